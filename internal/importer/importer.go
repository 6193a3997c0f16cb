package importer

import (
	"io"

	"github.com/sh44ni/telalalbedaya-sub000/internal/transaction"
)

type Format string

const (
	FormatStatement Format = "statement"
	FormatLegacy    Format = "legacy"
)

type Importer interface {
	Parse(r io.Reader) ([]transaction.RecordParams, error)
}
