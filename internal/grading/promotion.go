package grading

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/class-record-api/internal/models"
)

// PromotionReach is how many salary grades above the current one are considered.
const PromotionReach = 3

// Requirement is a position requirement parsed into per-type thresholds.
type Requirement struct {
	COI  models.Threshold
	NCOI models.Threshold
}

var (
	clauseSeparator = regexp.MustCompile(`(?i);|\band\b`)
	clauseCount     = regexp.MustCompile(`(?i)(\d+)\D*?(very satisfactory|outstanding)`)
	clauseNCOI      = regexp.MustCompile(`(?i)\bncois?\b`)
	clauseCOI       = regexp.MustCompile(`(?i)\bcois?\b`)
)

// ParseRequirement extracts {vs, o} thresholds from requirement text such as
// "At least 6 Proficient COIs at Very Satisfactory; and 4 Proficient NCOIs at Very
// Satisfactory". Clauses are split on ";" and "and"; a clause that names no
// indicator type applies to the type named before it. Unparseable text yields zero
// thresholds.
func ParseRequirement(text string) Requirement {
	var req Requirement
	current := models.IndicatorCOI
	for _, clause := range clauseSeparator.Split(text, -1) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		switch {
		case clauseNCOI.MatchString(clause):
			current = models.IndicatorNCOI
		case clauseCOI.MatchString(clause):
			current = models.IndicatorCOI
		}
		match := clauseCount.FindStringSubmatch(clause)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		target := &req.COI
		if current == models.IndicatorNCOI {
			target = &req.NCOI
		}
		if strings.EqualFold(match[2], "outstanding") {
			target.Outstanding = n
		} else {
			target.VerySatisfactory = n
		}
	}
	return req
}

// TallyRatings counts COI/NCOI ratings at VS and O across the rating years, which
// are ordered oldest first. Each objective slot takes its cell from the newest year
// that has an indicator code there. An indicator code filled in several slots counts
// once, from its newest year. Only the last MaxRatingYears years are read.
func TallyRatings(years []models.RatingYear) models.IndicatorTally {
	oldest := len(years) - models.MaxRatingYears
	if oldest < 0 {
		oldest = 0
	}

	type occurrence struct {
		year int
		cell models.ObjectiveRating
	}
	latest := make(map[string]occurrence)
	order := make([]string, 0, models.ObjectiveSlots)
	for obj := 0; obj < models.ObjectiveSlots; obj++ {
		for y := len(years) - 1; y >= oldest; y-- {
			objectives := years[y].Objectives
			if obj >= len(objectives) {
				continue
			}
			cell := objectives[obj]
			code := strings.ToUpper(strings.TrimSpace(cell.IndicatorCode))
			if code == "" {
				continue
			}
			prev, dup := latest[code]
			if !dup {
				order = append(order, code)
			}
			if !dup || y > prev.year {
				latest[code] = occurrence{year: y, cell: cell}
			}
			break
		}
	}

	var tally models.IndicatorTally
	for _, code := range order {
		countRating(&tally, latest[code].cell)
	}
	return tally
}

func countRating(tally *models.IndicatorTally, cell models.ObjectiveRating) {
	switch cell.Type {
	case models.IndicatorCOI:
		switch cell.Rating {
		case models.RatingVerySatisfactory:
			tally.COIVerySatisfactory++
		case models.RatingOutstanding:
			tally.COIOutstanding++
		}
	case models.IndicatorNCOI:
		switch cell.Rating {
		case models.RatingVerySatisfactory:
			tally.NCOIVerySatisfactory++
		case models.RatingOutstanding:
			tally.NCOIOutstanding++
		}
	}
}

// qualifies applies the VS/O bar. Outstanding ratings also count toward the VS bar.
func qualifies(vs, o int, t models.Threshold) bool {
	return vs+o >= t.VerySatisfactory && o >= t.Outstanding
}

func shortfall(vs, o int, t models.Threshold) models.Shortfall {
	return models.Shortfall{
		NeededVerySatisfactory: atLeastZero(t.VerySatisfactory - (vs + o)),
		NeededOutstanding:      atLeastZero(t.Outstanding - o),
	}
}

func atLeastZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// AssessPosition measures a tally against a single position's requirement.
func AssessPosition(tally models.IndicatorTally, position models.Position) models.PositionAssessment {
	req := ParseRequirement(position.Requirement)
	a := models.PositionAssessment{
		Position:      position,
		COI:           req.COI,
		NCOI:          req.NCOI,
		COIQualified:  qualifies(tally.COIVerySatisfactory, tally.COIOutstanding, req.COI),
		NCOIQualified: qualifies(tally.NCOIVerySatisfactory, tally.NCOIOutstanding, req.NCOI),
		COIShortfall:  shortfall(tally.COIVerySatisfactory, tally.COIOutstanding, req.COI),
		NCOIShortfall: shortfall(tally.NCOIVerySatisfactory, tally.NCOIOutstanding, req.NCOI),
	}
	a.Qualified = a.COIQualified && a.NCOIQualified
	return a
}

// EvaluatePromotion tallies the rating grid and checks every position strictly above
// the current salary grade and at most PromotionReach grades higher. The lowest such
// position not yet qualified for becomes the next target; when all qualify the
// analysis is all clear.
func EvaluatePromotion(years []models.RatingYear, current models.Position, positions []models.Position) models.PromotionAnalysis {
	analysis := models.PromotionAnalysis{
		CurrentPosition: current,
		Tally:           TallyRatings(years),
		Candidates:      []models.PositionAssessment{},
	}

	eligible := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		if p.SalaryGrade > current.SalaryGrade && p.SalaryGrade <= current.SalaryGrade+PromotionReach {
			eligible = append(eligible, p)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].SalaryGrade < eligible[j].SalaryGrade })

	for _, p := range eligible {
		assessment := AssessPosition(analysis.Tally, p)
		analysis.Candidates = append(analysis.Candidates, assessment)
		if !assessment.Qualified && analysis.NextTarget == nil {
			target := assessment
			analysis.NextTarget = &target
		}
	}
	analysis.AllClear = analysis.NextTarget == nil
	return analysis
}
