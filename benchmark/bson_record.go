package benchmark

import (
	"context"
	"errors"
	"time"

	"github.com/mongodb/mongo-swift-driver-sub005/bson"
)

type benchLocation struct {
	X int32
	Y int32
}

func (l benchLocation) MarshalDocument(enc *bson.Encoder) error {
	if err := enc.EncodeField("x", l.X); err != nil {
		return err
	}
	return enc.EncodeField("y", l.Y)
}

func (l *benchLocation) UnmarshalDocument(dec *bson.Decoder, doc *bson.Document) error {
	if err := dec.DecodeField(doc, "x", &l.X); err != nil {
		return err
	}
	return dec.DecodeField(doc, "y", &l.Y)
}

type benchEvent struct {
	ID       bson.ObjectID
	Name     string
	Enabled  bool
	Count    int32
	Total    int64
	Ratio    float64
	Created  time.Time
	Location benchLocation
}

func (e benchEvent) MarshalDocument(enc *bson.Encoder) error {
	if err := enc.EncodeField("_id", e.ID); err != nil {
		return err
	}
	if err := enc.EncodeField("name", e.Name); err != nil {
		return err
	}
	if err := enc.EncodeField("enabled", e.Enabled); err != nil {
		return err
	}
	if err := enc.EncodeField("count", e.Count); err != nil {
		return err
	}
	if err := enc.EncodeField("total", e.Total); err != nil {
		return err
	}
	if err := enc.EncodeField("ratio", e.Ratio); err != nil {
		return err
	}
	if err := enc.EncodeField("created", e.Created); err != nil {
		return err
	}
	return enc.EncodeField("location", e.Location)
}

func (e *benchEvent) UnmarshalDocument(dec *bson.Decoder, doc *bson.Document) error {
	if err := dec.DecodeField(doc, "_id", &e.ID); err != nil {
		return err
	}
	if err := dec.DecodeField(doc, "name", &e.Name); err != nil {
		return err
	}
	if err := dec.DecodeField(doc, "enabled", &e.Enabled); err != nil {
		return err
	}
	if err := dec.DecodeField(doc, "count", &e.Count); err != nil {
		return err
	}
	if err := dec.DecodeField(doc, "total", &e.Total); err != nil {
		return err
	}
	if err := dec.DecodeField(doc, "ratio", &e.Ratio); err != nil {
		return err
	}
	if err := dec.DecodeField(doc, "created", &e.Created); err != nil {
		return err
	}
	return dec.DecodeField(doc, "location", &e.Location)
}

func benchmarkEvent() benchEvent {
	return benchEvent{
		ID:       bson.NewObjectID(),
		Name:     "instrumented event",
		Enabled:  true,
		Count:    42,
		Total:    1 << 40,
		Ratio:    0.5,
		Created:  time.Date(2016, 8, 9, 10, 57, 0, 0, time.UTC),
		Location: benchLocation{X: 7, Y: -3},
	}
}

func BSONRecordEncoding(ctx context.Context, tm TimerManager, iters int) error {
	event := benchmarkEvent()
	enc := bson.NewEncoder()

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		doc, err := enc.Encode(event)
		if err != nil {
			return err
		}
		if doc.Len() == 0 {
			return errors.New("encoding failed")
		}
	}
	return nil
}

func BSONRecordDecoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := bson.NewEncoder().Encode(benchmarkEvent())
	if err != nil {
		return err
	}
	dec := bson.NewDecoder()

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out := benchEvent{}
		if err := dec.Decode(&out, doc); err != nil {
			return err
		}
		if out.Name == "" {
			return errors.New("decoding failed")
		}
	}
	return nil
}
