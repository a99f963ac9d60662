package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hashicorp/go-multierror"

	"github.com/shaiso/bootkit/internal/telemetry"
)

const (
	// DefaultEmptyMarker — файл, которым держат пустые каталоги под git.
	DefaultEmptyMarker = ".empty"

	// maxDepth ограничивает рекурсию при обходе source (циклы симлинков).
	maxDepth = 64

	// root — корень файловой системы billy (source или target root).
	root = "."
)

// Seeder копирует содержимое по умолчанию в пустые тома.
type Seeder struct {
	enabled     bool
	source      billy.Filesystem
	target      billy.Filesystem
	emptyMarker string
	logger      *slog.Logger
	metrics     *telemetry.Metrics
}

// Config — конфигурация Seeder.
type Config struct {
	// Enabled — главный выключатель. По умолчанию seeding выключен.
	Enabled bool

	// Source и Target — файловые системы с корнями в source root и target root.
	Source billy.Filesystem
	Target billy.Filesystem

	// EmptyMarker — имя файла-маркера пустого каталога (default: ".empty").
	EmptyMarker string

	Logger  *slog.Logger
	Metrics *telemetry.Metrics // опционально
}

// New создаёт новый Seeder.
func New(cfg Config) *Seeder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	marker := cfg.EmptyMarker
	if marker == "" {
		marker = DefaultEmptyMarker
	}

	return &Seeder{
		enabled:     cfg.Enabled,
		source:      cfg.Source,
		target:      cfg.Target,
		emptyMarker: marker,
		logger:      logger,
		metrics:     cfg.Metrics,
	}
}

// NewOS создаёт Seeder поверх локальной файловой системы.
func NewOS(enabled bool, sourceDir, targetDir, emptyMarker string, logger *slog.Logger, metrics *telemetry.Metrics) *Seeder {
	return New(Config{
		Enabled:     enabled,
		Source:      osfs.New(sourceDir),
		Target:      osfs.New(targetDir),
		EmptyMarker: emptyMarker,
		Logger:      logger,
		Metrics:     metrics,
	})
}

// Result — итог одного прохода seeding.
type Result struct {
	// Copied — элементы верхнего уровня, скопированные полностью.
	Copied []string

	// Skipped — элементы, цель которых уже заполнена.
	Skipped []string

	// Failed — элементы, при копировании которых произошла ошибка.
	Failed []string

	FilesCopied int
	DirsCreated int
}

// Populate выполняет один проход seeding.
//
// 1. Если seeding выключен, ничего не делает
// 2. Если source root не существует, ничего не делает (не ошибка)
// 3. Для каждого элемента source root копирует его в target root,
//    если цель отсутствует или фактически пуста
//
// Ошибки отдельных элементов не прерывают обработку остальных.
func (s *Seeder) Populate(ctx context.Context) (*Result, error) {
	res := &Result{}

	s.logger.Debug("populate container directories", "enabled", s.enabled)
	if !s.enabled {
		return res, nil
	}

	if _, err := s.source.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("source directory does not exist, nothing to populate",
				"source", s.source.Root(),
			)
			return res, nil
		}
		return res, fmt.Errorf("stat source %s: %w", s.source.Root(), err)
	}

	entries, err := s.source.ReadDir(root)
	if err != nil {
		return res, fmt.Errorf("read source %s: %w", s.source.Root(), err)
	}
	sortByName(entries)

	s.logger.Debug("checking whether container directories need to be initialized",
		"source", s.source.Root(),
		"target", s.target.Root(),
		"entries", len(entries),
	)

	var errs *multierror.Error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, err)
			break
		}

		name := entry.Name()

		present, err := s.targetPresent(name)
		if err != nil {
			errs = multierror.Append(errs, s.fail(res, name, fmt.Errorf("inspect target: %w", err)))
			continue
		}

		if present {
			s.logger.Info("target is present, skipping",
				"entry", name,
				"target", s.targetPath(name),
			)
			res.Skipped = append(res.Skipped, name)
			s.metrics.SeedEntry(telemetry.SeedResultSkipped)
			continue
		}

		s.logger.Info("copying default content",
			"entry", name,
			"source", s.sourcePath(name),
			"target", s.targetPath(name),
		)

		files := res.FilesCopied
		err = s.copyEntry(ctx, name, entry, 0, res)
		s.metrics.SeedFiles(res.FilesCopied - files)
		if err != nil {
			errs = multierror.Append(errs, s.fail(res, name, err))
			continue
		}

		res.Copied = append(res.Copied, name)
		s.metrics.SeedEntry(telemetry.SeedResultCopied)
	}

	s.logger.Info("populate container directories completed",
		"copied", len(res.Copied),
		"skipped", len(res.Skipped),
		"failed", len(res.Failed),
		"files", res.FilesCopied,
	)

	return res, errs.ErrorOrNil()
}

// fail логирует ошибку элемента и оборачивает её в CopyError.
func (s *Seeder) fail(res *Result, name string, err error) error {
	cerr := &CopyError{
		Entry:  name,
		Source: s.sourcePath(name),
		Target: s.targetPath(name),
		Err:    err,
	}

	s.logger.Error("failed to populate container directory",
		"entry", name,
		"source", cerr.Source,
		"target", cerr.Target,
		"error", err,
	)

	res.Failed = append(res.Failed, name)
	s.metrics.SeedEntry(telemetry.SeedResultFailed)
	return cerr
}

// targetPresent проверяет, заполнена ли цель.
//
// Цель считается заполненной, если она существует и либо не является
// каталогом, либо содержит хотя бы один элемент кроме файла-маркера.
func (s *Seeder) targetPresent(name string) (bool, error) {
	info, err := s.target.Stat(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	if !info.IsDir() {
		return true, nil
	}

	children, err := s.target.ReadDir(name)
	if err != nil {
		return false, err
	}
	for _, child := range children {
		if child.Name() != s.emptyMarker {
			return true, nil
		}
	}

	s.logger.Debug("target directory is effectively empty", "target", s.targetPath(name))
	return false, nil
}

// copyEntry копирует файл или каталог rel из source в target.
func (s *Seeder) copyEntry(ctx context.Context, rel string, info os.FileInfo, depth int, res *Result) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: %s", ErrTooDeep, s.sourcePath(rel))
	}

	// Симлинки разыменовываются: копируется содержимое
	if info.Mode()&os.ModeSymlink != 0 {
		resolved, err := s.source.Stat(rel)
		if err != nil {
			return fmt.Errorf("resolve symlink %s: %w", s.sourcePath(rel), err)
		}
		info = resolved
	}

	switch {
	case info.IsDir():
		return s.copyDir(ctx, rel, info, depth, res)
	case info.Mode().IsRegular():
		return s.copyFile(rel, info, res)
	default:
		s.logger.Warn("skipping special file",
			"source", s.sourcePath(rel),
			"mode", info.Mode().String(),
		)
		return nil
	}
}

// copyDir создаёт каталог в target и рекурсивно копирует содержимое.
func (s *Seeder) copyDir(ctx context.Context, rel string, info os.FileInfo, depth int, res *Result) error {
	s.logger.Debug("creating directory", "target", s.targetPath(rel))

	// Владелец должен иметь право записи, иначе содержимое не скопировать
	if err := s.target.MkdirAll(rel, info.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf("create directory %s: %w", s.targetPath(rel), err)
	}
	res.DirsCreated++

	children, err := s.source.ReadDir(rel)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", s.sourcePath(rel), err)
	}
	sortByName(children)

	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.copyEntry(ctx, s.source.Join(rel, child.Name()), child, depth+1, res); err != nil {
			return err
		}
	}

	return nil
}

// copyFile копирует один файл. Существующий целевой файл считается конфликтом.
func (s *Seeder) copyFile(rel string, info os.FileInfo, res *Result) error {
	s.logger.Debug("copying file",
		"source", s.sourcePath(rel),
		"target", s.targetPath(rel),
	)

	in, err := s.source.Open(rel)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.sourcePath(rel), err)
	}
	defer in.Close()

	out, err := s.target.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrCopyConflict, s.targetPath(rel))
		}
		return fmt.Errorf("create %s: %w", s.targetPath(rel), err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", s.targetPath(rel), err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.targetPath(rel), err)
	}

	res.FilesCopied++
	return nil
}

func (s *Seeder) sourcePath(rel string) string {
	return filepath.Join(s.source.Root(), rel)
}

func (s *Seeder) targetPath(rel string) string {
	return filepath.Join(s.target.Root(), rel)
}

func sortByName(entries []os.FileInfo) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
}
