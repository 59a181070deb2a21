package linereader

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func feedAll(t *testing.T, r *Reader, s string) []string {
	t.Helper()
	var lines []string
	for i := 0; i < len(s); i++ {
		line, ok, err := r.Feed(s[i])
		require.NoError(t, err)
		if ok {
			lines = append(lines, line)
		}
	}
	return lines
}

func TestFeed_Terminators(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"lf", "1\n", []string{"1"}},
		{"cr", "1\r", []string{"1"}},
		{"crlf absorbed", "2\r\n", []string{"2"}},
		{"repeated terminators", "\r\n\r\n3\n\n\n", []string{"3"}},
		{"multi char line", "150\r\n", []string{"150"}},
		{"several lines", "2\r\n1\r\n150\r\n", []string{"2", "1", "150"}},
		{"no terminator", "abc", nil},
		{"spaces kept", " 1 \n", []string{" 1 "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(0)
			require.Equal(t, tc.want, feedAll(t, r, tc.input))
		})
	}
}

func TestFeed_BufferClearedAfterLine(t *testing.T) {
	r := New(0)
	require.Equal(t, []string{"12"}, feedAll(t, r, "12\n"))
	require.Zero(t, r.Len())
	require.Equal(t, []string{"3"}, feedAll(t, r, "3\n"))
}

func TestFeed_PartialLineSurvivesBetweenCalls(t *testing.T) {
	r := New(0)
	require.Empty(t, feedAll(t, r, "15"))
	require.Equal(t, 2, r.Len())
	require.Equal(t, []string{"150"}, feedAll(t, r, "0\r\n"))
}

func TestFeed_Unbounded(t *testing.T) {
	r := New(0)
	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'x'
	}
	require.Equal(t, []string{string(long)}, feedAll(t, r, string(long)+"\n"))
}

func TestFeed_MaxLen(t *testing.T) {
	r := New(3)
	require.Empty(t, feedAll(t, r, "abc"))

	_, ok, err := r.Feed('d')
	require.ErrorIs(t, err, ErrInputTooLong)
	require.False(t, ok)
	require.Zero(t, r.Len())

	// The rest of the over-long line is dropped with its terminator.
	require.Empty(t, feedAll(t, r, "1\n"))
	require.Zero(t, r.Len())
	require.Equal(t, []string{"2"}, feedAll(t, r, "2\n"))
}

func TestFeed_MaxLenReportsOncePerLine(t *testing.T) {
	r := New(2)
	var errs int
	var lines []string
	for _, c := range []byte("abcdefgh\r\n3\r\n") {
		line, ok, err := r.Feed(c)
		if err != nil {
			require.ErrorIs(t, err, ErrInputTooLong)
			errs++
		}
		if ok {
			lines = append(lines, line)
		}
	}
	require.Equal(t, 1, errs)
	require.Equal(t, []string{"3"}, lines)
}

func TestReset_EndsDiscard(t *testing.T) {
	r := New(1)
	feedAll(t, r, "a")
	_, _, err := r.Feed('b')
	require.ErrorIs(t, err, ErrInputTooLong)

	r.Reset()
	require.Equal(t, []string{"c"}, feedAll(t, r, "c\n"))
}

func TestReset(t *testing.T) {
	r := New(0)
	feedAll(t, r, "99")
	r.Reset()
	require.Zero(t, r.Len())
	require.Equal(t, []string{"2"}, feedAll(t, r, "2\n"))
}
