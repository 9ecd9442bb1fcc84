// Package convert turns spreadsheet workbooks into the CSV UTF-8 text the
// inventory parser reads. It is the conversion step users are pointed to when
// they upload a workbook directly.
package convert
