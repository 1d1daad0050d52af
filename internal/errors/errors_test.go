package errors

import (
	stderrors "errors"
	"testing"

	"aline/domain/core"
)

func TestCodeFor_MapsDomainSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{core.NewMissingColumnError("age"), CodeSchemaError},
		{core.NewUnknownLevelError("service_unit", "CCU"), CodeSchemaError},
		{core.NewConvergenceError("logistic regression", 25), CodeConvergence},
		{core.NewDegenerateWeightError(3, 0), CodeDegenerateWeight},
		{core.ErrSingularMatrix, CodeSingularMatrix},
		{core.ErrInsufficientData, CodeInvalidInput},
		{stderrors.New("anything else"), CodeInternalError},
	}
	for _, c := range cases {
		if got := CodeFor(c.err); got != c.code {
			t.Errorf("CodeFor(%v) = %s, want %s", c.err, got, c.code)
		}
	}
}

func TestWrap_PreservesCodeAndCause(t *testing.T) {
	cause := core.NewConvergenceError("logistic regression", 25)
	wrapped := Wrap(cause, "estimation failed")

	if GetCode(wrapped) != CodeConvergence {
		t.Errorf("code = %s, want %s", GetCode(wrapped), CodeConvergence)
	}
	if !stderrors.Is(wrapped, core.ErrConvergence) {
		t.Error("wrapping must not hide the domain sentinel")
	}
	if !core.IsConvergenceError(wrapped) {
		t.Error("domain helper should see through the wrapper")
	}
}

func TestWrap_NilPassesThrough(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil should stay nil")
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(core.ErrInsufficientData, "loading %s", "cohort.csv")
	if GetCode(err) != CodeInvalidInput {
		t.Errorf("code = %s, want %s", GetCode(err), CodeInvalidInput)
	}
}

func TestConstructors(t *testing.T) {
	if GetCode(ConfigInvalid("bad")) != CodeConfigInvalid {
		t.Error("ConfigInvalid code mismatch")
	}
	if GetCode(InvalidInput("bad")) != CodeInvalidInput {
		t.Error("InvalidInput code mismatch")
	}
	if GetCode(InternalError("bad")) != CodeInternalError {
		t.Error("InternalError code mismatch")
	}
}
