package rpc

import "io"

// StdioConn joins a reader and a writer into the stream the server reads
// requests from and writes responses to.
type StdioConn struct {
	Reader io.ReadCloser
	Writer io.WriteCloser
}

func (s *StdioConn) Read(p []byte) (int, error) {
	return s.Reader.Read(p)
}

func (s *StdioConn) Write(p []byte) (int, error) {
	return s.Writer.Write(p)
}

func (s *StdioConn) Close() error {
	rerr := s.Reader.Close()
	werr := s.Writer.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}
