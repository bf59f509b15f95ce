package promo

import "time"

// LineFacts describes one order line for target resolution: the book plus
// the catalog attributes targets can reference.
type LineFacts struct {
	BookID      string
	CategoryIDs []string
	AuthorID    string
	PublisherID string
	SeriesID    string
}

// InScope reports whether the line qualifies as a target of the event.
// Targets are OR'ed: any single match puts the line in scope. ALL and
// ALL_ORDERS always match; user-segment targets qualify every line when
// the user qualifies. An event with no targets puts nothing in scope.
func InScope(targets []Target, line LineFacts, user UserFacts, now time.Time) bool {
	for _, t := range targets {
		if targetMatches(t, line, user, now) {
			return true
		}
	}
	return false
}

func targetMatches(t Target, line LineFacts, user UserFacts, now time.Time) bool {
	switch t.Type {
	case TargetAll, TargetAllOrders:
		return true
	case TargetBook:
		return t.TargetID == line.BookID
	case TargetCategory:
		for _, c := range line.CategoryIDs {
			if c == t.TargetID {
				return true
			}
		}
		return false
	case TargetSeries:
		return t.TargetID != "" && t.TargetID == line.SeriesID
	case TargetAuthor:
		return t.TargetID != "" && t.TargetID == line.AuthorID
	case TargetPublisher:
		return t.TargetID != "" && t.TargetID == line.PublisherID
	case TargetUser:
		return t.TargetID == user.UserID
	case TargetUserGroup:
		return user.InGroup(t.TargetID)
	case TargetNewUser:
		return user.IsNew(now)
	case TargetVIPUser:
		return user.VIP
	case TargetFirstOrder:
		return user.BillsPlaced == 0
	case TargetLocation:
		return t.TargetID != "" && t.TargetID == user.Location
	default:
		return false
	}
}

// NeedsTargetID reports whether a target type must reference an entity id
func NeedsTargetID(targetType TargetType) bool {
	switch targetType {
	case TargetBook, TargetCategory, TargetSeries, TargetAuthor,
		TargetPublisher, TargetUser, TargetUserGroup, TargetLocation:
		return true
	default:
		return false
	}
}

// KnownTargetType reports whether the type is part of the taxonomy
func KnownTargetType(targetType TargetType) bool {
	switch targetType {
	case TargetBook, TargetCategory, TargetSeries, TargetAuthor,
		TargetPublisher, TargetUser, TargetUserGroup, TargetNewUser,
		TargetVIPUser, TargetAllOrders, TargetFirstOrder, TargetLocation,
		TargetAll:
		return true
	default:
		return false
	}
}
