package constants

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Redis cache keys and TTLs.
// Pattern: courtly:{module}:{operation}:{identifier}:{params?}

const CACHE_PREFIX = "courtly"

// Calendar views are the hottest read path; they tolerate short staleness
// because every booking mutation goes through the locked write path anyway.
// Their TTL comes from config (REDIS_SLOT_VIEW_TTL); the club catalog barely
// changes and gets a long one.
const TTL_CLUB_CATALOG = 12 * time.Hour

const (
	CACHE_KEY_MONTH_AVAILABILITY = CACHE_PREFIX + ":slots:availability" // + :club:X:YYYY-MM
	CACHE_KEY_MONTH_VIEW         = CACHE_PREFIX + ":slots:monthview"    // + :club:X:YYYY-MM
	CACHE_KEY_CLUB_LIST          = CACHE_PREFIX + ":catalog:clubs"
)

func BuildMonthAvailabilityKey(clubID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("%s:club:%s:%04d-%02d", CACHE_KEY_MONTH_AVAILABILITY, clubID, year, int(month))
}

func BuildMonthViewKey(clubID uuid.UUID, year int, month time.Month) string {
	return fmt.Sprintf("%s:club:%s:%04d-%02d", CACHE_KEY_MONTH_VIEW, clubID, year, int(month))
}

// Booking mutations invalidate a club's calendar caches wholesale.
func PatternClubViews(clubID uuid.UUID) string {
	return fmt.Sprintf("%s:slots:*:club:%s:*", CACHE_PREFIX, clubID)
}
