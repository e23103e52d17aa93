// Package service is the business layer: validation, authorization, media
// uploads, and orchestration over the repository interfaces. Services accept
// primitives and small input structs, never HTTP types, and return domain
// errors from the apperror package — handlers translate those to status
// codes.
//
// Media uploads always happen before the database transaction opens. A
// failed upload aborts the operation with no rows written; a failed
// transaction can at worst leave an unreferenced object in storage.
package service

// Validation limits.
const (
	MaxTitleLength       = 200
	MaxBodyLength        = 50000
	MaxCodeLength        = 100000
	MaxImageBytes        = 5 << 20 // 5 MiB per image
	MaxImagesPerPost     = 10
	DefaultListLimit     = 20
	MaxListLimit         = 100
	MaxDisplayNameLength = 100
)

// Upload is one file received from the client, decoded off the wire by the
// handler.
type Upload struct {
	Data        []byte
	ContentType string
}
