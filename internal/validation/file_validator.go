package validation

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
)

// FileValidator provides common file validation functions for all executables
type FileValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a new file validator. A maxBytes of zero disables
// the size check.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path is an existing, readable regular file within
// the size limit.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(path).WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Path is not a regular file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is not a regular file", path)).
			WithContext("path", path)
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Error("File exceeds size limit",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxBytes))
		return apperrors.NewPayloadTooLargeError(fmt.Sprintf("file %s exceeds %d bytes", path, v.maxBytes)).
			WithContext("size", info.Size()).
			WithContext("limit", v.maxBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInventoryFile checks a report file before parsing: ValidateFile plus
// the extension and content checks of inventory.CheckFormat.
func (v *FileValidator) ValidateInventoryFile(path string) error {
	if err := inventory.CheckFormat(path, nil); err != nil {
		v.logger.Error("Unsupported inventory file",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return err
	}

	if err := v.ValidateFile(path); err != nil {
		return err
	}

	head, err := readHead(path, inventory.SniffLen)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to read %s", path), err)
	}

	if err := inventory.CheckFormat(path, head); err != nil {
		v.logger.Error("Inventory file content is not delimited text",
			slog.String("file", path),
			slog.String("format", string(inventory.DetectFormat(path, head))))
		return err
	}
	return nil
}

// ValidateExcelFile checks that path is a workbook the converter can open
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
	default:
		v.logger.Error("File is not an Excel workbook",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewUnsupportedFormatError(
			fmt.Sprintf("file %s is not an Excel workbook (extension: %s)", path, ext), nil)
	}

	// Lock files left behind by Excel
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel file", path))
	}

	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

func readHead(path string, n int) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	head := make([]byte, n)
	read, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:read], nil
}
