package net

import (
	"context"
	"io"
	"net"

	"golang.org/x/sync/errgroup"
)

// PlayLocal runs a session in-process: the server side and the terminal
// client talk over an in-memory pipe.
func PlayLocal(ctx context.Context, srv *Server, name string, deckNumber int, in io.Reader, out io.Writer) error {
	serverConn, clientConn := net.Pipe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer serverConn.Close()
		return srv.Serve(gctx, serverConn)
	})
	g.Go(func() error {
		defer clientConn.Close()
		client := NewClient(clientConn, in, out)
		if err := client.Join(name, deckNumber); err != nil {
			return err
		}
		return client.RunREPL(gctx)
	})
	return g.Wait()
}
