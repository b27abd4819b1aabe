package entity

import "time"

// CandidateTally votos de un candidato.
type CandidateTally struct {
	CandidateID int64
	Name        string
	Description string
	Photo       string
	Votes       int64
}

// PositionTally conteos crudos de una posición, base del cálculo de resultados.
type PositionTally struct {
	Position   Position
	Candidates []CandidateTally // en orden de presentación
	ByType     map[VoteType]int64
}

// VoteCounts totales globales leídos del libro de votos.
type VoteCounts struct {
	TotalParticipants int64
	VotedParticipants int64 // COUNT(DISTINCT participant_id) en votes
	TotalVotes        int64
	ActivePositions   int64
	TotalCandidates   int64
}

// TimeBucket votos agrupados por hora o día (UTC).
type TimeBucket struct {
	Start time.Time
	Votes int64
}

// VoteAuditRow fila del rastro de auditoría de votos.
type VoteAuditRow struct {
	VoteID           int64
	CreatedAt        time.Time
	ParticipantEmail string
	PositionName     string
	VoteType         VoteType
	CandidateName    string
	IPAddress        string
}

// Bucket granularidad de la línea de tiempo.
type Bucket string

const (
	BucketHour Bucket = "hour"
	BucketDay  Bucket = "day"
)

// Truncate lleva t (en UTC) al inicio de su bucket.
func (b Bucket) Truncate(t time.Time) time.Time {
	t = t.UTC()
	if b == BucketDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t.Truncate(time.Hour)
}

// Label formato del bucket: "2006-01-02 15:00" por hora, "2006-01-02" por día.
func (b Bucket) Label(t time.Time) string {
	if b == BucketDay {
		return t.UTC().Format("2006-01-02")
	}
	return t.UTC().Format("2006-01-02 15:00")
}
