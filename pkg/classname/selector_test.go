package classname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLiteralSelectors(t *testing.T) {
	src := `
.button-primary { color: red; }
.card{padding: 0}
.nav .nav-item {
  &:hover { color: blue; }
}
.link:hover { }
.-inverted { }
a.active {}
`
	assert.Equal(t,
		[]string{"button-primary", "card", "nav-item", "-inverted", "active"},
		ScanLiteralSelectors(src))
}

func TestScanLiteralSelectors_IgnoresNumbers(t *testing.T) {
	assert.Empty(t, ScanLiteralSelectors(`.5 { } margin: 0.5rem;`))
}
