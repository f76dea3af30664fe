package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorString() {
	s.Equal("unknown consent category", (&Error{Code: CodeValidation, Message: "unknown consent category"}).Error())
	s.Equal("unavailable", (&Error{Code: CodeUnavailable}).Error())
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	inner := &Error{Code: CodeNotFound, Message: "record missing"}
	outer := &Error{Code: CodeInternal, Message: "read failed", Err: inner}

	s.True(errors.Is(outer, &Error{Code: CodeNotFound}))
	s.False(inner.Is(errors.New("not_found")))
}

func (s *DomainErrorsSuite) TestWrap() {
	s.Run("keeps the code of a wrapped domain error", func() {
		wrapped := Wrap(New(CodeUnavailable, "storage breaker open"), CodeInternal, "commit consent")
		s.True(HasCode(wrapped, CodeUnavailable))
		s.Equal("commit consent", wrapped.Error())
	})

	s.Run("applies the given code to foreign errors", func() {
		root := errors.New("disk full")
		wrapped := Wrap(root, CodeInternal, "write record")
		s.True(HasCode(wrapped, CodeInternal))
		s.ErrorIs(wrapped, root)
	})
}

func (s *DomainErrorsSuite) TestHasCodeThroughFmtWrapping() {
	err := fmt.Errorf("read consent: %w", New(CodeUnavailable, "storage breaker open"))
	s.True(HasCode(err, CodeUnavailable))
	s.False(HasCode(err, CodeInternal))
}

func (s *DomainErrorsSuite) TestHasCodeNil() {
	s.False(HasCode(nil, CodeNotFound))
}
