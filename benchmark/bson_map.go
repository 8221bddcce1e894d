package benchmark

import (
	"context"
	"errors"

	"github.com/mongodb/mongo-swift-driver-sub005/bson"
)

func bsonMapDecoding(ctx context.Context, tm TimerManager, iters int, dataSet string) error {
	raw, err := loadSourceRaw(dataSet)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out := make(map[string]interface{})
		err := bson.Unmarshal(raw, &out)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("decoding failed")
		}
	}
	return nil
}

func bsonMapEncoding(ctx context.Context, tm TimerManager, iters int, dataSet string) error {
	raw, err := loadSourceRaw(dataSet)
	if err != nil {
		return err
	}

	doc := make(map[string]interface{})
	if err = bson.Unmarshal(raw, &doc); err != nil {
		return err
	}

	tm.ResetTimer()

	var buf []byte
	for i := 0; i < iters; i++ {
		buf, err = bson.Marshal(doc)
		if err != nil {
			return err
		}

		if len(buf) == 0 {
			return errors.New("encoding failed")
		}
	}

	return nil
}

func BSONFlatMapDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonMapDecoding(ctx, tm, iters, flatBSONData)
}

func BSONFlatMapEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonMapEncoding(ctx, tm, iters, flatBSONData)
}

func BSONDeepMapDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonMapDecoding(ctx, tm, iters, deepBSONData)
}

func BSONDeepMapEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonMapEncoding(ctx, tm, iters, deepBSONData)
}

func BSONFullMapDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonMapDecoding(ctx, tm, iters, fullBSONData)
}

func BSONFullMapEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonMapEncoding(ctx, tm, iters, fullBSONData)
}
