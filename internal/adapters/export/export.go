// Package export renders the annotation set as CSV or KML for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tienyuan-huang/election/internal/domain/model"
)

// CSV writes one row per annotation under a fixed header. encoding/csv
// handles quoting, doubling internal quotes per RFC 4180.
func CSV(w io.Writer, annotations []model.Annotation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "latitude", "longitude", "note"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, a := range annotations {
		record := []string{
			a.Name,
			formatCoord(a.Lat),
			formatCoord(a.Lng),
			a.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// KML writes a Placemark per annotation. Coordinates follow the KML
// lng,lat,alt order.
func KML(w io.Writer, annotations []model.Annotation) error {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<kml xmlns="http://www.opengis.net/kml/2.2"><Document>` + "\n")
	for _, a := range annotations {
		b.WriteString("<Placemark>")
		b.WriteString("<name>")
		b.WriteString(escapeEntities(a.Name))
		b.WriteString("</name>")
		b.WriteString("<description>")
		b.WriteString(escapeEntities(a.Note))
		b.WriteString("</description>")
		b.WriteString("<Point><coordinates>")
		b.WriteString(formatCoord(a.Lng))
		b.WriteByte(',')
		b.WriteString(formatCoord(a.Lat))
		b.WriteString(",0")
		b.WriteString("</coordinates></Point>")
		b.WriteString("</Placemark>\n")
	}
	b.WriteString("</Document></kml>\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write kml: %w", err)
	}
	return nil
}

// escapeEntities covers the three characters that break KML text nodes.
func escapeEntities(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func formatCoord(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", f), "0"), ".")
}
