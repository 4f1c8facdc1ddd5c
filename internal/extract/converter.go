package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// commonSofficePaths are searched when soffice is not on PATH.
var commonSofficePaths = []string{
	"/usr/bin/soffice",
	"/usr/lib/libreoffice/program/soffice",
	"/opt/libreoffice/program/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	`C:\Program Files\LibreOffice\program\soffice.exe`,
}

// SofficeConverter converts legacy office files with a headless LibreOffice.
type SofficeConverter struct {
	binary  string
	timeout time.Duration
	logger  *observability.Logger
	lookErr error
}

// NewSofficeConverter resolves the soffice binary from path, then PATH, then
// the common install locations. A converter without a binary is still
// returned; its Available and Convert report ConverterUnavailable.
func NewSofficeConverter(path string, timeout time.Duration, logger *observability.Logger) *SofficeConverter {
	if logger == nil {
		logger = observability.Nop()
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &SofficeConverter{timeout: timeout, logger: logger.WithComponent("converter")}
	c.binary, c.lookErr = lookupSoffice(path)
	return c
}

func lookupSoffice(path string) (string, error) {
	candidates := []string{}
	if path != "" {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "soffice", "libreoffice")
	candidates = append(candidates, commonSofficePaths...)

	for _, c := range candidates {
		if p, err := exec.LookPath(c); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("soffice not found (looked for %s)", strings.Join(candidates, ", "))
}

// Binary returns the resolved soffice path, or "" when none was found.
func (c *SofficeConverter) Binary() string {
	return c.binary
}

// Available implements domain.Converter.
func (c *SofficeConverter) Available() error {
	if c.binary == "" {
		return domain.ConverterUnavailableError(
			"LibreOffice is required for legacy Office formats; install it or set SOFFICE_PATH", c.lookErr)
	}
	return nil
}

// Convert implements domain.Converter.
func (c *SofficeConverter) Convert(ctx context.Context, data []byte, sourceExt, targetExt string) ([]byte, error) {
	if err := c.Available(); err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "docqa-convert-*")
	if err != nil {
		return nil, domain.ExtractionError("create temp directory", err)
	}
	defer os.RemoveAll(tmpDir)

	inPath := filepath.Join(tmpDir, "input."+sourceExt)
	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return nil, domain.ExtractionError("write conversion input", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// A private profile dir lets concurrent conversions run side by side.
	profile := "-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(tmpDir, "profile"))
	cmd := exec.CommandContext(ctx, c.binary,
		profile,
		"--headless",
		"--convert-to", targetExt,
		"--outdir", tmpDir,
		inPath,
	)

	c.logger.Debug().
		Str("binary", c.binary).
		Str("from", sourceExt).
		Str("to", targetExt).
		Msg("Running soffice conversion")

	start := time.Now()
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, domain.ExtractionError(
			fmt.Sprintf("soffice conversion %s to %s failed: %s", sourceExt, targetExt, strings.TrimSpace(string(output))), err)
	}

	outPath := filepath.Join(tmpDir, "input."+targetExt)
	converted, err := os.ReadFile(outPath)
	if err != nil {
		return nil, domain.ExtractionError(fmt.Sprintf("soffice produced no %s output", targetExt), err)
	}

	c.logger.Debug().
		Int("bytes", len(converted)).
		Dur("elapsed", time.Since(start)).
		Msg("soffice conversion finished")
	return converted, nil
}
