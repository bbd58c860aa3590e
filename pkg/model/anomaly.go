package model

type AnomalyKind string

const (
	AnomalyOrphanScore       AnomalyKind = "orphan_score"
	AnomalyOrphanDedup       AnomalyKind = "orphan_dedup"
	AnomalyForeignSimilarity AnomalyKind = "foreign_similarity"
	AnomalyDanglingFrame     AnomalyKind = "dangling_frame"
	AnomalyPolicy            AnomalyKind = "policy"
)

// Anomaly is a data-integrity finding across stage outputs. Anomalies never change what traces and
// listings return; they are reported separately.
type Anomaly struct {
	Kind    AnomalyKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}
