package status

// NaturalLess compares machine names by alternating alphabetic and numeric
// runs, comparing numeric runs by value so that "M2" sorts before "M10".
func NaturalLess(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		aDigit := isDigit(a[0])
		bDigit := isDigit(b[0])
		if aDigit != bDigit {
			// Numeric run sorts before an alphabetic run at the same position.
			return aDigit
		}

		if aDigit {
			aRun, aRest := splitRun(a, true)
			bRun, bRest := splitRun(b, true)
			if cmp := compareNumericRuns(aRun, bRun); cmp != 0 {
				return cmp < 0
			}
			a, b = aRest, bRest
			continue
		}

		aRun, aRest := splitRun(a, false)
		bRun, bRest := splitRun(b, false)
		if aRun != bRun {
			return aRun < bRun
		}
		a, b = aRest, bRest
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func splitRun(s string, digits bool) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) == digits {
		i++
	}
	return s[:i], s[i:]
}

// compareNumericRuns compares two digit runs by value without parsing,
// so arbitrarily long runs cannot overflow.
func compareNumericRuns(a, b string) int {
	a = trimLeadingZeros(a)
	b = trimLeadingZeros(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s)-1 && s[i] == '0' {
		i++
	}
	return s[i:]
}
