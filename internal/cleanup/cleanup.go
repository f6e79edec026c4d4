// Package cleanup removes everything the pipeline created: the database schema and the
// report files in the output directory. Both are destructive, so a confirmation gates them.
package cleanup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"churn-metrics-pipeline/internal/report"
)

var (
	ErrNotConfirmed = errors.New("cleanup not confirmed")
	ErrScope        = errors.New("--db-only and --output-only are mutually exclusive")
)

type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// PromptConfirmer asks on Out and reads one line from In. Only "y" or "yes" confirm;
// end of input refuses.
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (p PromptConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Yes confirms without asking.
type Yes struct{}

func (Yes) Confirm(string) (bool, error) { return true, nil }

// SchemaDropper is called only when the database is in scope.
type SchemaDropper interface {
	DropSchema(ctx context.Context) ([]string, error)
}

type Options struct {
	DBOnly     bool
	OutputOnly bool
	OutputDir  string
}

type Result struct {
	Dropped    []string
	Removed    []string
	DirRemoved bool
}

type UseCase struct {
	dropper   SchemaDropper
	confirmer Confirmer
	logger    *slog.Logger
}

func NewUseCase(dropper SchemaDropper, confirmer Confirmer, logger *slog.Logger) *UseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UseCase{dropper: dropper, confirmer: confirmer, logger: logger}
}

func (uc *UseCase) Execute(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if opts.DBOnly && opts.OutputOnly {
		return res, ErrScope
	}
	doDB := !opts.OutputOnly
	doFiles := !opts.DBOnly

	var targets []string
	if doDB {
		targets = append(targets, "drop the churn_analytics schema and all its tables")
	}
	if doFiles {
		targets = append(targets, fmt.Sprintf("delete report files in %s", opts.OutputDir))
	}

	ok, err := uc.confirmer.Confirm("This will " + strings.Join(targets, " and ") + ". Continue?")
	if err != nil {
		return res, err
	}
	if !ok {
		return res, ErrNotConfirmed
	}

	if doDB {
		res.Dropped, err = uc.dropper.DropSchema(ctx)
		if err != nil {
			return res, err
		}
		uc.logger.Info("schema dropped", "objects", len(res.Dropped))
	}

	if doFiles {
		res.Removed, res.DirRemoved, err = RemoveOutputs(opts.OutputDir)
		if err != nil {
			return res, err
		}
		uc.logger.Info("output files removed", "files", len(res.Removed), "dir_removed", res.DirRemoved)
	}
	return res, nil
}

// RemoveOutputs deletes report files (by extension) directly inside dir, then dir itself
// if nothing else is left. A missing dir is not an error.
func RemoveOutputs(dir string) (removed []string, dirRemoved bool, err error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	remaining := 0
	for _, e := range entries {
		if e.IsDir() || !isReportFile(e.Name()) {
			remaining++
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			return removed, false, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	sort.Strings(removed)

	if remaining == 0 {
		if err := os.Remove(dir); err != nil {
			return removed, false, fmt.Errorf("failed to remove %s: %w", dir, err)
		}
		return removed, true, nil
	}
	return removed, false, nil
}

func isReportFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range report.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
