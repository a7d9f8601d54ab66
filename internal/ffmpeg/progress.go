package ffmpeg

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
)

// ffmpeg reports the encode position on stderr status lines as
// "time=HH:MM:SS.cc". Position over total input duration is the job's
// progress fraction.
var reTime = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// ParseTime extracts the encode position in seconds from one stderr line,
// reporting false for lines without a time field.
func ParseTime(line string) (float64, bool) {
	m := reTime.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	s, _ := strconv.ParseFloat(m[3], 64)
	return float64(h)*3600 + float64(min)*60 + s, true
}

// Fraction converts an encode position into a progress fraction of total,
// clamped to [0, 1]. An unknown total (zero) always yields zero; the final
// jump to 1 then comes from run completion.
func Fraction(position, total float64) float64 {
	if total <= 0 {
		return 0
	}
	f := position / total
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// scanStatusLines splits ffmpeg stderr into lines, treating the carriage
// returns ffmpeg uses to redraw its status line as line breaks so every
// intermediate status update is seen.
func scanStatusLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = scanStatusLines
