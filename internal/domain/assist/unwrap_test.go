package assist

import "testing"

func TestUnwrapCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name, in, want string
	}{
		{"plain code", "int x = 0;\n", "int x = 0;\n"},
		{"single fence", "```cpp\nint x = 0;\nreturn x;\n```", "int x = 0;\nreturn x;\n"},
		{"fence with prose", "Here is the fix:\n\n```go\nx := 1\n```\n", "x := 1\n"},
		{"prose on both sides", "Fixed:\n\n```go\ny := x / d\n```\n\nThe divisor was zero.\n", "y := x / d\n"},
		{"two fences", "```\na\n```\n\n```\nb\n```", "```\na\n```\n\n```\nb\n```"},
		{"tilde fence", "~~~\nq\n~~~", "q\n"},
	}
	for _, tc := range cases {
		if got := UnwrapCode(tc.in); got != tc.want {
			t.Errorf("%s: got %q; want %q", tc.name, got, tc.want)
		}
	}
}
