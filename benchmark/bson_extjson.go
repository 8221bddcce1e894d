package benchmark

import (
	"context"
	"errors"

	"github.com/mongodb/mongo-swift-driver-sub005/bson"
)

func bsonExtJSONEncoding(ctx context.Context, tm TimerManager, iters int, dataSet string) error {
	doc, err := loadSourceDocument(dataSet)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.MarshalExtJSON(doc, true)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("marshaling error")
		}
	}

	return nil
}

func bsonExtJSONDecoding(ctx context.Context, tm TimerManager, iters int, dataSet string) error {
	data, err := loadSourceExtJSON(dataSet)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ParseExtJSON(data)
		if err != nil {
			return err
		}
		if out.Len() == 0 {
			return errors.New("parsing error")
		}
	}

	return nil
}

func BSONFlatExtJSONEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonExtJSONEncoding(ctx, tm, iters, flatBSONData)
}

func BSONFlatExtJSONDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonExtJSONDecoding(ctx, tm, iters, flatBSONData)
}

func BSONDeepExtJSONEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonExtJSONEncoding(ctx, tm, iters, deepBSONData)
}

func BSONDeepExtJSONDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return bsonExtJSONDecoding(ctx, tm, iters, deepBSONData)
}
