package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Export serializes the structure as indented JSON stamped with now.
func Export(s Structure, now time.Time) ([]byte, error) {
	out := s.Clone()
	out.Normalize()
	stamp := now.UTC()
	out.ExportedAt = &stamp
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting plan: %w", err)
	}
	return data, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9]+`)

// ExportFilename names an export file after the plan title and date, e.g.
// plan_api_migration_2024-03-01.json.
func ExportFilename(s Structure, now time.Time) string {
	name := strings.Trim(unsafeFilenameChars.ReplaceAllString(strings.ToLower(s.Title), "_"), "_")
	if name == "" {
		name = "unnamed"
	}
	if len(name) > 60 {
		name = strings.TrimRight(name[:60], "_")
	}
	return fmt.Sprintf("plan_%s_%s.json", name, now.UTC().Format("2006-01-02"))
}
