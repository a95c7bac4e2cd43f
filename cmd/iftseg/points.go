package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePoints reads "x,y;x,y" into coordinate lists of dims entries each
func parsePoints(s string, dims int) ([][]int, error) {
	var points [][]int
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		fields := strings.Split(item, ",")
		if len(fields) != dims {
			return nil, fmt.Errorf("point %q: want %d coordinates, got %d", item, dims, len(fields))
		}
		p := make([]int, dims)
		for d, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("point %q: %w", item, err)
			}
			p[d] = v
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no points in %q", s)
	}
	return points, nil
}
