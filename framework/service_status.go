package framework

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// AwaitService polls a status URL until it answers with a 200 status, and returns the
// response body. It gives up once timeout has passed, reporting the result of the last
// attempt. Progress dots are written to output.
func AwaitService(url string, timeout time.Duration, output io.Writer) ([]byte, error) {
	fmt.Fprintf(output, "Connecting to %s", url)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		resp, err := http.DefaultClient.Get(url)
		if err == nil {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				err = readErr
			case resp.StatusCode != http.StatusOK:
				err = fmt.Errorf("status code %d: %s", resp.StatusCode, string(body))
			default:
				fmt.Fprintln(output)
				return body, nil
			}
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return nil, fmt.Errorf("timed out, result of last query was: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}
