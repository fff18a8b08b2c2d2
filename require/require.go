package require

import "github.com/kjk/kvpairs/assert"

// this is a subset of github.com/stretchr/testify/require
// it's assert that stops the test on first failure

// TestingT is an interface wrapper around *testing.T
type TestingT interface {
	Errorf(format string, args ...interface{})
	FailNow()
}

type tHelper interface {
	Helper()
}

func helper(t TestingT) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
}

// Len asserts that the specified object has specific length.
//
//	require.Len(t, mySlice, 3)
func Len(t TestingT, object interface{}, length int, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Len(t, object, length, msgAndArgs...) {
		t.FailNow()
	}
}

// Nil asserts that the specified object is nil.
//
//	require.Nil(t, err)
func Nil(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Nil(t, object, msgAndArgs...) {
		t.FailNow()
	}
}

func NotNil(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.NotNil(t, object, msgAndArgs...) {
		t.FailNow()
	}
}

// NoError asserts that a function returned no error (i.e. `nil`).
func NoError(t TestingT, err error, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.NoError(t, err, msgAndArgs...) {
		t.FailNow()
	}
}

func Error(t TestingT, err error, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Error(t, err, msgAndArgs...) {
		t.FailNow()
	}
}

// ErrorIs asserts that err wraps target
func ErrorIs(t TestingT, err, target error, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.ErrorIs(t, err, target, msgAndArgs...) {
		t.FailNow()
	}
}

func Empty(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Empty(t, object, msgAndArgs...) {
		t.FailNow()
	}
}

func NotEmpty(t TestingT, object interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.NotEmpty(t, object, msgAndArgs...) {
		t.FailNow()
	}
}

// Equal asserts that two objects are equal.
//
//	require.Equal(t, 123, 123)
func Equal(t TestingT, expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.Equal(t, expected, actual, msgAndArgs...) {
		t.FailNow()
	}
}

func NotEqual(t TestingT, expected interface{}, actual interface{}, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.NotEqual(t, expected, actual, msgAndArgs...) {
		t.FailNow()
	}
}

func True(t TestingT, value bool, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.True(t, value, msgAndArgs...) {
		t.FailNow()
	}
}

func False(t TestingT, value bool, msgAndArgs ...interface{}) {
	helper(t)
	if !assert.False(t, value, msgAndArgs...) {
		t.FailNow()
	}
}
