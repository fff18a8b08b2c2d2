package filerotate

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Config struct {
	// called after a file was closed. didRotate is false
	// when closed via Close()
	DidClose func(path string, didRotate bool)
	// returns path of the new file if it's time to rotate, "" otherwise.
	// creationTime is zero for the first file
	PathIfShouldRotate func(creationTime time.Time, now time.Time) string
	// for tests, defaults to time.Now
	Now func() time.Time
}

// File is an io.WriteCloser that writes to a file that changes
// every day or every hour
type File struct {
	mu sync.Mutex

	// Path is the path of the current file
	Path string

	creationTime time.Time
	config       Config
	file         *os.File
}

func IsSameDay(t1, t2 time.Time) bool {
	return t1.Year() == t2.Year() && t1.YearDay() == t2.YearDay()
}

func IsSameHour(t1, t2 time.Time) bool {
	return IsSameDay(t1, t2) && t1.Hour() == t2.Hour()
}

func New(config *Config) (*File, error) {
	if config == nil {
		return nil, errors.New("must provide config")
	}
	if config.PathIfShouldRotate == nil {
		return nil, errors.New("must provide config.PathIfShouldRotate")
	}
	file := &File{
		config: *config,
	}
	if file.config.Now == nil {
		file.config.Now = time.Now
	}
	if err := file.reopenIfNeeded(); err != nil {
		return nil, err
	}
	return file, nil
}

func makeRotateInDir(dir, prefix, format string, same func(t1, t2 time.Time) bool) func(time.Time, time.Time) string {
	return func(creationTime time.Time, now time.Time) string {
		if same(creationTime, now) {
			return ""
		}
		return filepath.Join(dir, prefix+now.Format(format)+".txt")
	}
}

func MakeDailyRotateInDir(dir string, prefix string) func(time.Time, time.Time) string {
	return makeRotateInDir(dir, prefix, "2006-01-02", IsSameDay)
}

func MakeHourlyRotateInDir(dir string, prefix string) func(time.Time, time.Time) string {
	return makeRotateInDir(dir, prefix, "2006-01-02_15", IsSameHour)
}

// NewDaily creates a new file, rotating daily in a given directory
func NewDaily(dir string, prefix string, didClose func(path string, didRotate bool)) (*File, error) {
	return New(&Config{
		DidClose:           didClose,
		PathIfShouldRotate: MakeDailyRotateInDir(dir, prefix),
	})
}

// NewHourly creates a new file, rotating hourly in a given directory
func NewHourly(dir string, prefix string, didClose func(path string, didRotate bool)) (*File, error) {
	return New(&Config{
		DidClose:           didClose,
		PathIfShouldRotate: MakeHourlyRotateInDir(dir, prefix),
	})
}

func (f *File) close(didRotate bool) error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	if err == nil && f.config.DidClose != nil {
		f.config.DidClose(f.Path, didRotate)
	}
	return err
}

func (f *File) open(path string, now time.Time) error {
	f.Path = path
	f.creationTime = now
	// we can't assume that the dir for the file already exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var err error
	f.file, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	return err
}

func (f *File) reopenIfNeeded() error {
	now := f.config.Now()
	newPath := f.config.PathIfShouldRotate(f.creationTime, now)
	if newPath == "" && f.file != nil {
		return nil
	}
	if newPath == "" {
		// closed with Close(), re-open the same file
		newPath = f.Path
	}
	if err := f.close(true); err != nil {
		return err
	}
	return f.open(newPath, now)
}

// Write writes data to a file
func (f *File) Write(d []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.reopenIfNeeded(); err != nil {
		return 0, err
	}
	return f.file.Write(d)
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.close(false)
}

// Flush flushes the file
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}
