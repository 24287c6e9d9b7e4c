package payments

import (
	"strconv"
	"strings"

	"github.com/CourseForgeHQ/CourseForge/app/models"
	"github.com/stripe/stripe-go/v79"
)

// TierSource says which metadata branch produced a tier resolution. The
// unrecognized variant is explicit so callers log it instead of silently
// falling through to a default.
type TierSource string

const (
	// TierSourceExplicit means metadata.tier was present and recognized.
	TierSourceExplicit TierSource = "metadata_tier"
	// TierSourceCourseType means the basic-course metadata convention matched.
	TierSourceCourseType TierSource = "course_type"
	// TierSourceUnrecognized means no branch matched; the defensive basic
	// default applies and the product catalog likely needs attention.
	TierSourceUnrecognized TierSource = "unrecognized"
)

// TierResolution is the typed outcome of parsing product metadata.
type TierResolution struct {
	Tier             string
	SessionsToCredit int
	PaymentStatus    string
	Source           TierSource
}

// ResolveTier parses the loosely-typed product metadata convention into a
// closed result. Priority: explicit metadata.tier (premium_vip maps to vip),
// then course_type == "basic_course" with conditional session credits, then
// the basic default flagged as unrecognized.
func ResolveTier(md map[string]string) TierResolution {
	if raw, ok := md["tier"]; ok && strings.TrimSpace(raw) != "" {
		return TierResolution{
			Tier:             mapMetadataTier(raw),
			SessionsToCredit: parseSessionCount(md["total_lvl_ups"]),
			PaymentStatus:    models.PaymentStatusPaid,
			Source:           TierSourceExplicit,
		}
	}

	if strings.EqualFold(strings.TrimSpace(md["course_type"]), "basic_course") {
		sessions := 0
		if strings.EqualFold(strings.TrimSpace(md["includes_lvl_ups"]), "true") {
			sessions = parseSessionCount(md["total_lvl_ups"])
		}
		return TierResolution{
			Tier:             models.TierBasic,
			SessionsToCredit: sessions,
			PaymentStatus:    models.PaymentStatusPaid,
			Source:           TierSourceCourseType,
		}
	}

	return TierResolution{
		Tier:          models.TierBasic,
		PaymentStatus: models.PaymentStatusPaid,
		Source:        TierSourceUnrecognized,
	}
}

func mapMetadataTier(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "premium_vip", models.TierVIP:
		return models.TierVIP
	case models.TierPremium:
		return models.TierPremium
	default:
		return models.TierBasic
	}
}

func parseSessionCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// MergeProductMetadata overlays line-item product metadata onto session
// metadata. Product metadata wins: the catalog entry is the authority on
// what was sold, the session only carries checkout-time hints.
func MergeProductMetadata(session *stripe.CheckoutSession, items []*stripe.LineItem) map[string]string {
	merged := make(map[string]string)
	if session != nil {
		for k, v := range session.Metadata {
			merged[k] = v
		}
	}
	for _, item := range items {
		if item == nil || item.Price == nil || item.Price.Product == nil {
			continue
		}
		for k, v := range item.Price.Product.Metadata {
			merged[k] = v
		}
	}
	return merged
}
