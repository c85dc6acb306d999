package ingest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Descriptor is one candidate image offered by the user.
type Descriptor struct {
	Name      string
	MediaType string
	Size      int64
	Open      func() (io.ReadCloser, error)
}

// ErrContentTooLarge is returned by ReadLimited when the content exceeds the
// limit.
var ErrContentTooLarge = errors.New("content exceeds size limit")

// ReadAll opens the descriptor and reads its full content.
func (d Descriptor) ReadAll() ([]byte, error) {
	return d.ReadLimited(0)
}

// ReadLimited reads the content but stops after limit+1 bytes, returning
// ErrContentTooLarge when more than limit bytes are available. A limit of
// zero or less reads everything.
func (d Descriptor) ReadLimited(limit int64) ([]byte, error) {
	if d.Open == nil {
		return nil, errors.New("descriptor has no content")
	}
	rc, err := d.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	if limit <= 0 {
		return io.ReadAll(rc)
	}
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("read more than %d bytes: %w", limit, ErrContentTooLarge)
	}
	return data, nil
}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// FromPath builds a descriptor for a regular file.
func FromPath(path string) (Descriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Descriptor{}, fmt.Errorf("%s is a directory", path)
	}

	mediaType, err := detectMediaType(path)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Size:      info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromPaths expands directories one level deep and builds descriptors for
// every regular file, in argument order with directory entries sorted by name.
// Hidden files inside directories are skipped.
func FromPaths(paths []string) ([]Descriptor, error) {
	out, _, err := fromPaths(paths, false)
	return out, err
}

// FromExistingPaths behaves like FromPaths but skips files that no longer
// exist, returning their paths separately.
func FromExistingPaths(paths []string) ([]Descriptor, []string, error) {
	return fromPaths(paths, true)
}

func fromPaths(paths []string, skipMissing bool) ([]Descriptor, []string, error) {
	var out []Descriptor
	var missing []string
	add := func(path string) error {
		d, err := FromPath(path)
		if err != nil {
			if skipMissing && errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, path)
				return nil
			}
			return err
		}
		out = append(out, d)
		return nil
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if skipMissing && errors.Is(err, fs.ErrNotExist) {
				missing = append(missing, path)
				continue
			}
			return nil, nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			if err := add(path); err != nil {
				return nil, nil, err
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
				continue
			}
			if err := add(filepath.Join(path, entry.Name())); err != nil {
				return nil, nil, err
			}
		}
	}
	return out, missing, nil
}

// MediaTypeForName returns the media type implied by a file extension, or
// "application/octet-stream" when unknown.
func MediaTypeForName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if parsed, _, err := mime.ParseMediaType(t); err == nil {
			return parsed
		}
	}
	return "application/octet-stream"
}

func detectMediaType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	sniffed := http.DetectContentType(head[:n])
	if parsed, _, err := mime.ParseMediaType(sniffed); err == nil {
		sniffed = parsed
	}
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed, nil
	}
	return MediaTypeForName(path), nil
}
