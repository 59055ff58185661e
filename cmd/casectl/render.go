package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/fatih/color"

	"github.com/kailas-cloud/casesearch"
)

const wrapWidth = 100

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	captionColor = color.New(color.FgHiBlack)
	headingColor = color.New(color.FgYellow, color.Bold)
	warnColor    = color.New(color.FgYellow)
)

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339}

// formatDate renders an ISO date as "02 Jan 2006". Unparseable values are returned as-is.
func formatDate(v string) string {
	if v == "" {
		return "Unknown"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return v
}

// topicTitle turns a reasoning key like "article_21_violation" into "Article 21 Violation".
func topicTitle(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func wrap(text string, width int) string {
	var b strings.Builder
	line := 0
	for _, word := range strings.Fields(text) {
		switch {
		case line == 0:
		case line+1+len(word) > width:
			b.WriteByte('\n')
			line = 0
		default:
			b.WriteByte(' ')
			line++
		}
		b.WriteString(word)
		line += len(word)
	}
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// renderCase prints one case card.
func renderCase(w io.Writer, c *casesearch.Case) {
	titleColor.Fprintln(w, orDefault(c.Title, "Untitled case"))
	fmt.Fprintf(w, "%s · %s\n", orDefault(c.Court, "Unknown court"), formatDate(c.Field("judgment_date")))

	if c.Citation != "" {
		captionColor.Fprintln(w, c.Citation)
	}
	if s := c.Summary(); s != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wrap(s, wrapWidth))
	}

	if len(c.Issues) > 0 {
		headingColor.Fprintln(w, "\nKey Issues")
		for _, issue := range c.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}

	if len(c.Reasoning) > 0 {
		headingColor.Fprintln(w, "\nReasoning")
		for _, topic := range slices.Sorted(maps.Keys(c.Reasoning)) {
			fmt.Fprintf(w, "  %s\n", topicTitle(topic))
			for _, line := range strings.Split(wrap(c.Reasoning[topic], wrapWidth), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	if o := c.Outcome; o != nil && (o.Decision != "" || len(o.Directions) > 0) {
		headingColor.Fprintln(w, "\nOutcome")
		if o.Decision != "" {
			fmt.Fprintf(w, "  Decision: %s\n", o.Decision)
		}
		if len(o.Directions) > 0 {
			fmt.Fprintln(w, "  Directions:")
			for _, d := range o.Directions {
				fmt.Fprintf(w, "    - %s\n", d)
			}
		}
	}

	if len(c.Bench) > 0 {
		captionColor.Fprintln(w, "\nBench: "+strings.Join(c.Bench, ", "))
	}
	fmt.Fprintln(w, strings.Repeat("─", 40))
}

func renderCases(w io.Writer, cases []casesearch.Case) {
	for i := range cases {
		renderCase(w, &cases[i])
	}
}
