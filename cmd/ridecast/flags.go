package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/sartorproj/ridecast/rides"
	"github.com/sartorproj/ridecast/sarima"
)

// parseInts parses a comma-separated list such as "0,1,2".
func parseInts(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in %q", field, s)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", s)
	}
	return out, nil
}

// parseOrder parses "p,d,q".
func parseOrder(s string) (sarima.Order, error) {
	v, err := parseInts(s)
	if err != nil {
		return sarima.Order{}, err
	}
	if len(v) != 3 {
		return sarima.Order{}, fmt.Errorf("order %q needs p,d,q", s)
	}
	return sarima.Order{P: v[0], D: v[1], Q: v[2]}, nil
}

// parseSeasonalOrder parses "P,D,Q,s".
func parseSeasonalOrder(s string) (sarima.SeasonalOrder, error) {
	v, err := parseInts(s)
	if err != nil {
		return sarima.SeasonalOrder{}, err
	}
	if len(v) != 4 {
		return sarima.SeasonalOrder{}, fmt.Errorf("seasonal order %q needs P,D,Q,s", s)
	}
	return sarima.SeasonalOrder{P: v[0], D: v[1], Q: v[2], S: v[3]}, nil
}

// selectNeighborhoods returns the comma-separated names in list, or every
// neighborhood in days when list is empty.
func selectNeighborhoods(days []rides.StationDay, list string) []string {
	if strings.TrimSpace(list) == "" {
		return rides.Neighborhoods(days)
	}
	var out []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// chartPath builds a file name for a neighborhood's chart inside dir.
func chartPath(dir, neighborhood, ext string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, neighborhood)
	return filepath.Join(dir, name+ext)
}
