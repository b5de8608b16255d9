// Package logtail reads daemon log files incrementally for CLI display.
package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Options controls one Tail call.
//
// Offset < 0 means "start from the end": the last Limit lines are returned
// along with the offset where they ended. Offset >= 0 resumes a previous
// read and returns the lines written since. With Follow set, a call that
// finds no new lines blocks up to Wait for more before returning.
type Options struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// Result carries the lines read and the offset to resume from.
type Result struct {
	Lines  []string
	Offset int64
}

const pollInterval = 200 * time.Millisecond

// Tail reads from the log file at path according to opts. A missing file is
// not an error: the result is empty with offset zero, so callers can keep
// polling until the daemon creates it.
func Tail(ctx context.Context, path string, opts Options) (Result, error) {
	result := Result{Offset: opts.Offset}
	if opts.Wait < 0 {
		opts.Wait = 0
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if opts.Follow && opts.Wait > 0 {
				return waitForLines(ctx, path, 0, opts.Wait)
			}
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	if opts.Offset < 0 {
		result.Lines, result.Offset, err = lastLines(path, opts.Limit)
	} else {
		offset := opts.Offset
		if offset > info.Size() {
			// The file shrank underneath us, likely rotation. Resume
			// from the new end rather than rereading old content.
			offset = info.Size()
		}
		result.Lines, result.Offset, err = readForward(path, offset)
	}
	if err != nil {
		return Result{Offset: opts.Offset}, err
	}

	if opts.Follow && opts.Wait > 0 && len(result.Lines) == 0 {
		return waitForLines(ctx, path, result.Offset, opts.Wait)
	}
	return result, nil
}

// lastLines returns the final limit lines of the file using a ring buffer,
// plus the end-of-file offset to resume from. A limit of zero skips straight
// to the end.
func lastLines(path string, limit int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		offset, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, offset, nil
	}

	scanner := newLineScanner(file)
	ring := make([]string, limit)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, offset, nil
}

// readForward returns every full line from offset to the end of the file and
// the offset where reading stopped.
func readForward(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	scanner := newLineScanner(file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	newOffset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, newOffset, nil
}

func waitForLines(ctx context.Context, path string, offset int64, wait time.Duration) (Result, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := Result{Offset: offset}
	for {
		lines, newOffset, err := readForward(path, offset)
		if err != nil {
			return result, err
		}
		if len(lines) > 0 {
			result.Lines = lines
			result.Offset = newOffset
			return result, nil
		}
		if time.Now().After(deadline) {
			result.Offset = newOffset
			return result, nil
		}

		select {
		case <-ctx.Done():
			result.Offset = newOffset
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newLineScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
