package notifications

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the presentation category of an event.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// ParseKind accepts a kind name, case-insensitively.
func ParseKind(value string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(value))); k {
	case KindInfo, KindSuccess, KindWarning, KindError:
		return k, nil
	default:
		return "", fmt.Errorf("unknown notification kind %q", value)
	}
}

// rank orders kinds for threshold filtering.
func (k Kind) rank() int {
	switch k {
	case KindSuccess:
		return 1
	case KindWarning:
		return 2
	case KindError:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether k is at least as severe as threshold.
func (k Kind) AtLeast(threshold Kind) bool {
	return k.rank() >= threshold.rank()
}

// Message keys emitted by the batch manager and the export orchestrator.
const (
	KeyAdded             = "app.notifications.added"
	KeyDeleted           = "app.notifications.deleted"
	KeyAllDeleted        = "app.notifications.allDeleted"
	KeyConverted         = "app.notifications.converted"
	KeyConversionError   = "app.notifications.conversionError"
	KeyCancelled         = "app.notifications.cancelled"
	KeyAlreadyInProgress = "app.conversion.alreadyInProgress"
	KeyExported          = "app.notifications.exported"
	KeyExportPartial     = "app.notifications.exportPartial"
	KeyFetchFailed       = "app.notifications.fetchFailed"
	KeyArchiveFailed     = "app.notifications.archiveFailed"
)

// Payload holds message parameters such as name and count.
type Payload map[string]any

// Event is one notification record.
type Event struct {
	Kind       Kind
	MessageKey string
	Params     Payload
	Time       time.Time
}

// NewEvent stamps an event with the current time.
func NewEvent(kind Kind, key string, params Payload) Event {
	return Event{Kind: kind, MessageKey: key, Params: params, Time: time.Now()}
}

// Message renders the event in English.
func (e Event) Message() string {
	return Message(e.MessageKey, e.Params)
}

var catalog = map[string]string{
	KeyAdded:             "Added {count} image(s)",
	KeyDeleted:           "Removed {name}",
	KeyAllDeleted:        "Removed all images",
	KeyConverted:         "Converted {name}",
	KeyConversionError:   "Failed to convert {name}",
	KeyCancelled:         "Cancelled conversion of {name}",
	KeyAlreadyInProgress: "Conversion of {name} is already in progress",
	KeyExported:          "Delivered {count} file(s)",
	KeyExportPartial:     "Delivered {count} file(s); {failed} could not be read",
	KeyFetchFailed:       "Could not read converted output for {name}",
	KeyArchiveFailed:     "Could not write archive {name}",

	"app.validation.fileSize":            "{name} is larger than the size limit",
	"app.validation.format":              "{name} is not a jpeg, png, or webp image",
	"app.validation.dimensions.tooSmall": "{name} is smaller than the minimum dimensions",
	"app.validation.dimensions.tooBig":   "{name} exceeds the maximum dimensions",
	"app.validation.dimensions.unusual":  "{name} has an unusually large pixel count",
	"app.validation.dimensions.webSize":  "{name} is larger than recommended for the web",
}

// Message renders key with params substituted for {param} placeholders.
// Unknown keys render as the key itself followed by any name parameter.
func Message(key string, params Payload) string {
	template, ok := catalog[key]
	if !ok {
		if name, ok := params["name"]; ok {
			return fmt.Sprintf("%s: %v", key, name)
		}
		return key
	}
	if len(params) == 0 {
		return template
	}
	pairs := make([]string, 0, len(params)*2)
	for k, v := range params {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
