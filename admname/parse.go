package admname

import "strings"

// Default suffix markers for Seoul administrative names.
const (
	DistrictSuffix = "구"
)

var SubdivisionSuffixes = []string{"동", "가"}

// Name holds the district (gu) and subdivision (dong) extracted from a
// compound administrative name. An empty field means it was not found.
type Name struct {
	District    string
	Subdivision string
}

func (n Name) HasDistrict() bool    { return n.District != "" }
func (n Name) HasSubdivision() bool { return n.Subdivision != "" }

// Complete reports whether both parts were found.
func (n Name) Complete() bool { return n.HasDistrict() && n.HasSubdivision() }

type Parser struct {
	DistrictSuffix      string
	SubdivisionSuffixes []string
}

func NewParser(districtSuffix string, subdivisionSuffixes []string) *Parser {
	return &Parser{
		DistrictSuffix:      districtSuffix,
		SubdivisionSuffixes: subdivisionSuffixes,
	}
}

var defaultParser = NewParser(DistrictSuffix, SubdivisionSuffixes)

// Parse splits admName with the default Seoul suffixes.
func Parse(admName string) Name {
	return defaultParser.Parse(admName)
}

// Parse extracts district and subdivision from a whitespace separated
// name such as "서울특별시 강남구 역삼동". It never fails: parts that
// cannot be found are left empty.
//
// The district is the first token ending in the district suffix. The
// subdivision is the last token if it carries a subdivision suffix,
// otherwise the closest such token scanning from the end. A token
// claimed as the district is never also taken as the subdivision.
func (p *Parser) Parse(admName string) Name {
	var name Name
	parts := strings.Fields(admName)
	if len(parts) == 0 {
		return name
	}

	districtAt := -1
	for i, part := range parts {
		if hasSuffix(part, p.DistrictSuffix) {
			name.District = part
			districtAt = i
			break
		}
	}

	for i := len(parts) - 1; i >= 0; i-- {
		if i == districtAt {
			continue
		}
		if p.isSubdivision(parts[i]) {
			name.Subdivision = parts[i]
			break
		}
	}

	return name
}

func (p *Parser) isSubdivision(token string) bool {
	for _, suffix := range p.SubdivisionSuffixes {
		if hasSuffix(token, suffix) {
			return true
		}
	}
	return false
}

// hasSuffix treats an empty marker as matching nothing.
func hasSuffix(token, suffix string) bool {
	return suffix != "" && strings.HasSuffix(token, suffix)
}
