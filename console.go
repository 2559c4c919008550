package parvec

import (
    "fmt";
    "io";
)

// Console performs the prompted reads at the origin worker. Values are
// whitespace-delimited integers, scanned the way a terminal user types them.
type Console struct {
    in io.Reader
    out io.Writer
}

func NewConsole(in io.Reader, out io.Writer) *Console {
    return &Console{
        in: in,
        out: out,
    }
}

func (c *Console) ReadInt(prompt string) (int, error) {
    if _, err := fmt.Fprintln(c.out, prompt); err != nil {
        return 0, err
    }

    var value int
    if _, err := fmt.Fscan(c.in, &value); err != nil {
        return 0, fmt.Errorf("Invalid integer input: %v", err)
    }
    return value, nil
}
