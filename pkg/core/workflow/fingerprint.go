package workflow

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the planning inputs. Two states with the same wells,
// zones, rigs and availability share a fingerprint regardless of flash
// messages or map ordering.
func (s State) Fingerprint() string {
	var b strings.Builder

	for _, w := range s.Wells {
		b.WriteString("w|")
		b.WriteString(w.Name)
		b.WriteByte('|')
		b.WriteString(w.Zone)
		for _, v := range []float64{w.NetProduction, w.PlannedHours, w.Latitude, w.Longitude} {
			b.WriteByte('|')
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		b.WriteByte('\n')
	}

	zones := slices.Clone(s.Zones)
	slices.Sort(zones)
	b.WriteString("z|")
	b.WriteString(strings.Join(zones, "|"))
	b.WriteByte('\n')

	for _, r := range s.Rigs {
		fmt.Fprintf(&b, "r|%s|%s|%s\n", r.ID, r.CurrentWell, strconv.FormatFloat(r.RemainingHours, 'g', -1, 64))
	}

	names := make([]string, 0, len(s.Availability))
	for name := range s.Availability {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(&b, "a|%s|%s\n", name, strconv.FormatFloat(s.Availability[name], 'g', -1, 64))
	}

	return fmt.Sprintf("%016x", xxh3.HashString(b.String()))
}
