package serde

import (
    "fmt";
    "io";
    "encoding/csv";
    "strconv";

    "github.com/parvec/parvec/math";
)

type csvReader struct {
    reader *csv.Reader
}

func NewCsvReader(file io.Reader) Reader {
    reader := csv.NewReader(file)
    reader.FieldsPerRecord = -1

    return &csvReader{
        reader: reader,
    }
}

func (r *csvReader) ReadItem() (int64, math.Vector, error) {
    line, err := r.reader.Read()
    if err != nil {
        return 0, nil, err
    }

    return r.deserialize(line)
}

func (r *csvReader) deserialize(data []string) (int64, math.Vector, error) {
    if len(data) < 1 {
        return 0, nil, fmt.Errorf("Not enough values")
    }

    id, err := strconv.ParseInt(data[0], 10, 64)
    if err != nil {
        return 0, nil, err
    }

    vec := make(math.Vector, len(data[1:]))
    for i, rawValue := range data[1:] {
        value, err := strconv.ParseFloat(rawValue, 64)
        if err != nil {
            return 0, nil, err
        }
        vec[i] = value
    }

    return id, vec, nil
}

type csvWriter struct {
    writer *csv.Writer
}

func NewCsvWriter(file io.Writer) Writer {
    return &csvWriter{
        writer: csv.NewWriter(file),
    }
}

func (w *csvWriter) WriteItem(id int64, vec math.Vector) error {
    record := make([]string, len(vec) + 1)
    record[0] = strconv.FormatInt(id, 10)
    for i, value := range vec {
        record[i + 1] = strconv.FormatFloat(value, 'g', -1, 64)
    }

    return w.writer.Write(record)
}

func (w *csvWriter) Flush() error {
    w.writer.Flush()
    return w.writer.Error()
}
