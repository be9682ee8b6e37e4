package youtube

import (
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
)

// The Data API reports video length as an ISO-8601 duration such as
// PT1H2M30S or P1DT4H. Weeks and larger units never appear for videos.
var reISODuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration to total seconds.
func ParseISODuration(s string) (int, error) {
	if s == "" {
		return 0, eris.New("youtube: empty duration")
	}
	m := reISODuration.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "") {
		return 0, eris.Errorf("youtube: invalid ISO-8601 duration %q", s)
	}

	total := 0
	for i, mult := range []int{86400, 3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, eris.Wrapf(err, "youtube: duration component %q", m[i+1])
		}
		total += n * mult
	}
	return total, nil
}
