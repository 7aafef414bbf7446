package weather

import (
	"strings"

	"github.com/yegors/tailwinds/internal/wx"
)

// ScanKeywords returns the configured red keywords that occur inside the
// present weather groups or the cloud types (CB, TCU) of a raw report.
// Known codes are reported by their description.
func ScanKeywords(raw string, keywords []string) []string {
	if len(keywords) == 0 || raw == "" {
		return nil
	}

	var groups []string
	for _, tok := range strings.Fields(raw) {
		if _, ok := wx.DecodePhenomena(tok); ok {
			groups = append(groups, tok)
			continue
		}
		// convective cloud types ride on the cloud group, e.g. OVC015CB
		if layer, ok := wx.DecodeCloud(tok); ok && layer.Type != "" {
			groups = append(groups, layer.Type)
		}
	}

	var found []string
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.ToUpper(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		for _, g := range groups {
			if strings.Contains(g, kw) {
				label := kw
				if d, ok := wx.DescribeCode(kw); ok {
					label = d
				}
				found = append(found, label)
				seen[kw] = true
				break
			}
		}
	}
	return found
}
