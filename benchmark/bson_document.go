package benchmark

import (
	"context"
	"errors"

	"github.com/mongodb/mongo-swift-driver-sub005/bson"
)

func BSONFlatDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(flatBSONData)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := doc.MarshalBSON()
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("marshaling error")
		}
	}

	return nil
}

func BSONFlatDocumentDecodingLazy(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(flatBSONData)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ReadDocument(raw)
		if err != nil {
			return err
		}
		if out.Len() == 0 {
			return errors.New("marshaling error")
		}
	}
	return nil
}

func BSONFlatDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(flatBSONData)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ReadDocument(raw)
		if err != nil {
			return err
		}

		keys, err := countKeys(out)
		if err != nil {
			return err
		}
		if keys != flatDocumentKeys {
			return errors.New("document parsing error")
		}
	}
	return nil
}

func BSONDeepDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(deepBSONData)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := doc.MarshalBSON()
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("marshaling error")
		}
	}

	return nil
}

func BSONDeepDocumentDecodingLazy(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(deepBSONData)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ReadDocument(raw)
		if err != nil {
			return err
		}
		if out.Len() == 0 {
			return errors.New("marshaling error")
		}
	}
	return nil
}

func BSONDeepDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(deepBSONData)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ReadDocument(raw)
		if err != nil {
			return err
		}

		keys, err := countKeys(out)
		if err != nil {
			return err
		}
		if keys != deepDocumentKeys {
			return errors.New("incomplete bson")
		}
	}
	return nil
}

func BSONFullDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(fullBSONData)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := doc.MarshalBSON()
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("marshaling error")
		}
	}

	return nil
}

func BSONFullDocumentDecodingLazy(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(fullBSONData)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ReadDocument(raw)
		if err != nil {
			return err
		}
		if out.Len() == 0 {
			return errors.New("marshaling error")
		}
	}
	return nil
}

func BSONFullDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	doc, err := loadSourceDocument(fullBSONData)
	if err != nil {
		return err
	}

	raw, err := doc.MarshalBSON()
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.ReadDocument(raw)
		if err != nil {
			return err
		}

		keys, err := countKeys(out)
		if err != nil {
			return err
		}
		if keys != fullDocumentKeys {
			return errors.New("incomplete bson")
		}
	}
	return nil
}
