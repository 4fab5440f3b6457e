package cli

import (
	"fmt"
	"io"
	"sync"
)

// termNavigator renders navigation for a terminal client. In-app route
// changes update the tracked route; external navigations print the URL for
// the user to open, which is the terminal analogue of a full browser
// navigation.
type termNavigator struct {
	out io.Writer

	mu    sync.Mutex
	route string
}

func (n *termNavigator) NavigateTo(route string) {
	n.mu.Lock()
	n.route = route
	n.mu.Unlock()
	fmt.Fprintf(n.out, "-> %s\n", route)
}

func (n *termNavigator) OpenExternal(url string) {
	fmt.Fprintf(n.out, "Continue in your browser: %s\n", url)
}

func (n *termNavigator) Route() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.route
}
