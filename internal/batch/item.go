package batch

import (
	"context"
	"time"

	"pixbatch/internal/convert"
	"pixbatch/internal/textutil"
)

type item struct {
	id           string
	source       *Buffer
	name         string
	originalName string
	mediaType    string
	size         int64
	width        int
	height       int
	settings     convert.Settings
	state        State
	output       *convert.Output
	lastErr      error
	selected     bool
	progress     float64
	warnings     []string
	addedAt      time.Time
	updatedAt    time.Time

	// cancel and generation are set while converting. generation lets a
	// finishing conversion detect that the item was replaced or removed.
	cancel     context.CancelFunc
	generation uint64
}

// View is a point-in-time copy of an item. Output is shared with the manager;
// it is released when the item is removed or re-converted.
type View struct {
	ID           string
	Name         string
	OriginalName string
	MediaType    string
	Size         int64
	Width        int
	Height       int
	Settings     convert.Settings
	State        State
	Output       *convert.Output
	LastError    error
	Selected     bool
	Progress     float64
	Warnings     []string
	AddedAt      time.Time
	UpdatedAt    time.Time
}

func (it *item) view() View {
	return View{
		ID:           it.id,
		Name:         it.name,
		OriginalName: it.originalName,
		MediaType:    it.mediaType,
		Size:         it.size,
		Width:        it.width,
		Height:       it.height,
		Settings:     it.settings,
		State:        it.state,
		Output:       it.output,
		LastError:    it.lastErr,
		Selected:     it.selected,
		Progress:     it.progress,
		Warnings:     append([]string(nil), it.warnings...),
		AddedAt:      it.addedAt,
		UpdatedAt:    it.updatedAt,
	}
}

// SuggestedName is converted_<base>.<ext> for the item's snapshotted format.
func (v View) SuggestedName() string {
	return textutil.ConvertedName(v.Name, v.Settings.Format.Extension())
}

// ErrorMessage returns LastError as text, or empty.
func (v View) ErrorMessage() string {
	if v.LastError == nil {
		return ""
	}
	return v.LastError.Error()
}

func (it *item) release() {
	it.source.Release()
	it.output.Release()
	it.output = nil
}
