package refreshcache

// Func is a zero-argument computation registered against a key. It returns
// the computed value on success, or a non-nil error to report a failure.
// A Func that panics is treated the same as one that runs to completion and
// reports a failure — see Worker's "crash" transition.
//
// Func deliberately takes no arguments and no context: it is expected to
// close over whatever it needs (a client, a query, a key-specific
// parameter). The sources subpackage provides constructors that return a
// Func bound to a particular backend call.
type Func[V any] func() (V, error)
