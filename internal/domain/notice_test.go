package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoticeFor(t *testing.T) {
	assert.Contains(t, NoticeFor(fmt.Errorf("fetch: %w", ErrResponseNotList)), "such a large incident request")
	assert.Contains(t, NoticeFor(fmt.Errorf("fetch: %w", ErrTransport)), "Unable to reach")
	assert.Equal(t, "boom", NoticeFor(errors.New("boom")))
}
