package extract

import (
	"time"
)

// RawFile is an invoice document handed to the extractor. Key is the storage
// object key (used by strategies that presign URLs), Ext the lowercase
// extension without the dot.
type RawFile struct {
	Key   string
	Ext   string
	Bytes []byte
}

// RawTransaction is one candidate transaction produced by an extraction
// strategy, before classification and point calculation.
type RawTransaction struct {
	MerchantName string
	Date         time.Time
	AmountCents  int64
	Description  string
	CategoryCode string
}

// SupportedExts is the set of extensions the extractor accepts.
var SupportedExts = map[string]bool{
	"csv":  true,
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// imageExts are the extensions handled by image-understanding strategies.
var imageExts = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}
