package comm

import "fmt"

// Addrs holds the three communicator endpoints, one per messaging pattern.
type Addrs struct {
	// Survey is the surveyor/respondent readiness channel
	Survey string `yaml:"survey"`
	// Broadcast is the pub/sub channel for snapshots and jobs
	Broadcast string `yaml:"broadcast"`
	// Collect is the push/pull channel for partial results
	Collect string `yaml:"collect"`
}

// DefaultAddrs returns loopback TCP endpoints for a single-host cluster
func DefaultAddrs() Addrs {
	return Addrs{
		Survey:    "tcp://127.0.0.1:9201",
		Broadcast: "tcp://127.0.0.1:9202",
		Collect:   "tcp://127.0.0.1:9203",
	}
}

// InprocAddrs returns in-process endpoints under a namespace, used when the
// whole cluster lives in one process (tests, the default local run).
func InprocAddrs(namespace string) Addrs {
	return Addrs{
		Survey:    fmt.Sprintf("inproc://%s-survey", namespace),
		Broadcast: fmt.Sprintf("inproc://%s-broadcast", namespace),
		Collect:   fmt.Sprintf("inproc://%s-collect", namespace),
	}
}
