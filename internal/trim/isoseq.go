package trim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotIsoSeq is returned for headers that do not follow the Iso-Seq FLNC
// layout.
var ErrNotIsoSeq = errors.New("trim: not an Iso-Seq FLNC header")

// AdjustIsoSeqHeader updates the coordinates of an Iso-Seq FLNC header after
// removing polyALen tail bases. Headers look like
//
//	<movie>/<zmw>/<start>_<end>_CCS strand=-;fiveseen=1;...;polyAend=1511;threeend=1535;...
//
// On the + strand (start < end) end moves left by polyALen; on the - strand
// end moves right. polyAend always decreases by polyALen.
func AdjustIsoSeqHeader(header string, polyALen int) (string, error) {
	if polyALen == 0 {
		return header, nil
	}

	name, attrs, ok := strings.Cut(header, " ")
	if !ok {
		return header, fmt.Errorf("%w: missing attributes", ErrNotIsoSeq)
	}

	parts := strings.SplitN(name, "/", 3)
	if len(parts) != 3 {
		return header, fmt.Errorf("%w: name %q", ErrNotIsoSeq, name)
	}
	coords := strings.SplitN(parts[2], "_", 3)
	if len(coords) != 3 || !strings.HasPrefix(coords[2], "CCS") {
		return header, fmt.Errorf("%w: coordinates %q", ErrNotIsoSeq, parts[2])
	}
	start, err1 := strconv.Atoi(coords[0])
	end, err2 := strconv.Atoi(coords[1])
	if err1 != nil || err2 != nil {
		return header, fmt.Errorf("%w: coordinates %q", ErrNotIsoSeq, parts[2])
	}
	if start < end {
		end -= polyALen
	} else {
		end += polyALen
	}

	fields := strings.Split(attrs, ";")
	found := false
	for i, f := range fields {
		key, val, ok := strings.Cut(f, "=")
		if !ok || key != "polyAend" {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return header, fmt.Errorf("%w: polyAend %q", ErrNotIsoSeq, val)
		}
		fields[i] = "polyAend=" + strconv.Itoa(n-polyALen)
		found = true
		break
	}
	if !found {
		return header, fmt.Errorf("%w: no polyAend field", ErrNotIsoSeq)
	}

	var sb strings.Builder
	sb.Grow(len(header) + 4)
	sb.WriteString(parts[0])
	sb.WriteByte('/')
	sb.WriteString(parts[1])
	sb.WriteByte('/')
	sb.WriteString(strconv.Itoa(start))
	sb.WriteByte('_')
	sb.WriteString(strconv.Itoa(end))
	sb.WriteByte('_')
	sb.WriteString(coords[2])
	sb.WriteByte(' ')
	sb.WriteString(strings.Join(fields, ";"))
	return sb.String(), nil
}
