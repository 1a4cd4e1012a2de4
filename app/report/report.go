package report

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/zot-comb/app/database"
)

// Generator renders a run's journaled changes into a markdown report.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// DefaultFilename returns the report name for a given day, e.g.
// Changes_20240129.md.
func DefaultFilename(now time.Time) string {
	return "Changes_" + now.Format("20060102") + ".md"
}

// Write renders the changes and writes them to path. An empty change
// set still produces a report so a run always leaves a record.
func (g *Generator) Write(path string, changes []database.Change, now time.Time) error {
	content := g.Render(changes, now)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}

	slog.Info("Report written", "path", path, "changes", len(changes))
	return nil
}

// Render builds the report: URL cleanups first, then Substack items
// grouped by publication, then LinkedIn items.
func (g *Generator) Render(changes []database.Change, now time.Time) string {
	var urlOnly, linkedin []database.Change
	substackByPub := map[string][]database.Change{}

	for _, c := range changes {
		switch c.WebsiteType {
		case "Substack Newsletter":
			pub := c.Publication
			if pub == "" {
				pub = "(unknown publication)"
			}
			substackByPub[pub] = append(substackByPub[pub], c)
		case "LinkedIn":
			linkedin = append(linkedin, c)
		default:
			urlOnly = append(urlOnly, c)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Library Changes %s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "%d item(s) changed.\n", len(changes))

	if len(urlOnly) > 0 {
		b.WriteString("\n## URL Cleanup\n\n")
		b.WriteString("Tracking parameters removed:\n\n")
		for _, c := range urlOnly {
			fmt.Fprintf(&b, "- `%s` → %s\n", c.ItemKey, c.URL)
		}
	}

	if len(substackByPub) > 0 {
		b.WriteString("\n## Substack\n")

		pubs := make([]string, 0, len(substackByPub))
		for pub := range substackByPub {
			pubs = append(pubs, pub)
		}
		sort.Strings(pubs)

		for _, pub := range pubs {
			fmt.Fprintf(&b, "\n### %s\n\n", pub)
			for _, c := range substackByPub[pub] {
				writeEntry(&b, c)
			}
		}
	}

	if len(linkedin) > 0 {
		b.WriteString("\n## LinkedIn\n\n")
		for _, c := range linkedin {
			writeEntry(&b, c)
		}
	}

	return b.String()
}

func writeEntry(b *strings.Builder, c database.Change) {
	fmt.Fprintf(b, "- **%s**\n", c.Title)
	fmt.Fprintf(b, "  - Item: `%s` (%s)\n", c.ItemKey, c.ItemType)
	fmt.Fprintf(b, "  - URL: %s\n", c.URL)
	if c.Date != "" {
		fmt.Fprintf(b, "  - Date: %s\n", c.Date)
	}
	if c.Authors != "" {
		fmt.Fprintf(b, "  - Authors: %s\n", c.Authors)
	}
	if !c.Applied {
		b.WriteString("  - Dry run, not applied\n")
	}
}
