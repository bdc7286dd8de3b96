package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func smells(m dsl.Matcher) {
	// 1) Two consecutive guards with the same return can be merged with ||
	//      if a { return err }
	//      if b { return err }
	//    => if a || b { return err }
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Report(`two consecutive guards return the same value; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)

	// Same shape with continue inside loops
	m.Match(`if $c1 { continue }; if $c2 { continue }`).
		Report(`two consecutive continues; consider merging conditions with ||`).
		Suggest(`if $c1 || $c2 { continue }`)

	// 2) Nested for loops: not always wrong, but worth a look when refactoring
	m.Match(`for $*_ { for $*_ { $*_ } }`).
		Report(`nested for-loop; consider extracting inner loop logic or reducing algorithmic complexity`)
}

// conventions flags departures from how this module logs, builds errors and
// reaches the network.
func conventions(m dsl.Matcher) {
	// Structured logging only
	m.Match(`log.Printf($*_)`, `log.Println($*_)`, `log.Print($*_)`, `log.Fatalf($*_)`).
		Report(`use log/slog with key/value attributes instead of the log package`)

	m.Match(`fmt.Errorf($msg)`).
		Where(m["msg"].Const).
		Report(`fmt.Errorf without arguments; use errors.New`).
		Suggest(`errors.New($msg)`)

	// Executors take an injected *http.Client so tests can point them at httptest
	m.Match(`http.DefaultClient`, `http.Get($*_)`, `http.Post($*_)`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report(`use the injected *http.Client`)

	m.Match(`context.TODO()`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report(`thread the caller's context instead of context.TODO()`)

	// Only the CLI decides the exit code
	m.Match(`os.Exit($_)`).
		Where(!m.File().PkgPath.Matches(`/cmd/`)).
		Report(`return an error instead of exiting outside cmd/`)

	// The API key must never reach a log line
	m.Match(`$l.$method($msg, $*_, "apiKey", $*_)`, `$l.$method($msg, $*_, "api_key", $*_)`).
		Where(m["l"].Type.Is(`*slog.Logger`)).
		Report(`do not log the API key`)
}
