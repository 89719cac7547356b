package models

// Exchange is a question and answer pair that is part of an interrogation.
type Exchange struct {
	ID        int64  `db:"id"`
	CaseID    string `db:"case_id"`
	SuspectID int    `db:"suspect_id"`
	Order     int64  `db:"order"`
	Question  string `db:"question"`
	Answer    string `db:"answer"`
	Outcome   string `db:"outcome"`
}
