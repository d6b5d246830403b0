package testdata

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

func RandomName() string {
	return gofakeit.Adjective() + " " + gofakeit.Noun()
}

func RandomDescription() string {
	return gofakeit.HackerPhrase()
}

// RandomFieldName returns a lower snake case identifier accepted as a field name.
func RandomFieldName() string {
	return strings.ToLower(gofakeit.Noun() + "_" + gofakeit.LetterN(6))
}
