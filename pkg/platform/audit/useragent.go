package audit

import "github.com/mssola/useragent"

// DeviceHint summarizes a raw User-Agent header for investigators: browser
// family and an is-bot hint. Raw UA strings stay on the entry; the hint
// just makes grepping the log practical.
type DeviceHint struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// ParseUserAgent extracts a DeviceHint from a raw User-Agent header.
func ParseUserAgent(raw string) DeviceHint {
	if raw == "" {
		return DeviceHint{}
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	return DeviceHint{
		Browser: browser,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// Annotate folds the hint into an entry's metadata map.
func (h DeviceHint) Annotate(entry *Entry) {
	if h == (DeviceHint{}) {
		return
	}
	if entry.Metadata == nil {
		entry.Metadata = make(map[string]string)
	}
	if h.Browser != "" {
		entry.Metadata["ua_browser"] = h.Browser
	}
	if h.OS != "" {
		entry.Metadata["ua_os"] = h.OS
	}
	if h.Bot {
		entry.Metadata["ua_bot"] = "true"
	}
}
