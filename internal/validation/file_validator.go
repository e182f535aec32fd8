// Package validation checks input and output paths before the command line
// tools touch them, so failures surface with the offending path in the message.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath marks every failure returned by FileValidator.
var ErrInvalidPath = errors.New("invalid path")

// FileValidator validates source and output paths.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateFile checks that path exists, is a regular file and can be opened.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%w: file %s does not exist", ErrInvalidPath, path)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to stat file %s: %w", ErrInvalidPath, path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%w: %s is a directory, not a file", ErrInvalidPath, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: file %s is not readable: %w", ErrInvalidPath, path, err)
	}
	file.Close()

	v.logger.Debug("File validated", slog.String("file", path), slog.Int64("size", info.Size()))
	return nil
}

// ValidateSourceFile checks a price extract. An xlsx format needs an Excel
// extension, a csv format must not have one. Excel lock files are rejected.
func (v *FileValidator) ValidateSourceFile(path, format string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrInvalidPath, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	excel := ext == ".xlsx" || ext == ".xlsm" || ext == ".xls"
	ok := excel == (format == "xlsx")
	if !ok {
		v.logger.Error("Source extension does not match format",
			slog.String("file", path),
			slog.String("extension", ext),
			slog.String("format", format))
		return fmt.Errorf("%w: %s does not look like a %s file (extension %q)", ErrInvalidPath, path, format, ext)
	}
	return nil
}

// ValidateOutputFile ensures the directory of path exists and is writable.
func (v *FileValidator) ValidateOutputFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create output directory %s: %w", ErrInvalidPath, dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable", slog.String("directory", dir), slog.String("error", err.Error()))
		return fmt.Errorf("%w: output directory %s is not writable: %w", ErrInvalidPath, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}
