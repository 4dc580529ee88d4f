package scope

import "gorm.io/gorm"

// OrderBySpeechSequence replays minutes the way they were spoken: newest
// session first, speeches within a session in order.
func OrderBySpeechSequence(db *gorm.DB) *gorm.DB {
	return db.Order("minutes_date DESC, speech_order ASC")
}
