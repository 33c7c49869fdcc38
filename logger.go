package wardrobe

import "github.com/unkn0wn-root/wardrobe/log"

type (
	Fields    = log.Fields
	Logger    = log.Logger
	NopLogger = log.NopLogger
)
