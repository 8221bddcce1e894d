package benchmark

import "testing"

func BenchmarkBSONFlatDocumentEncoding(b *testing.B)     { WrapCase(BSONFlatDocumentEncoding)(b) }
func BenchmarkBSONFlatDocumentDecodingLazy(b *testing.B) { WrapCase(BSONFlatDocumentDecodingLazy)(b) }
func BenchmarkBSONFlatDocumentDecoding(b *testing.B)     { WrapCase(BSONFlatDocumentDecoding)(b) }
func BenchmarkBSONDeepDocumentEncoding(b *testing.B)     { WrapCase(BSONDeepDocumentEncoding)(b) }
func BenchmarkBSONDeepDocumentDecodingLazy(b *testing.B) { WrapCase(BSONDeepDocumentDecodingLazy)(b) }
func BenchmarkBSONDeepDocumentDecoding(b *testing.B)     { WrapCase(BSONDeepDocumentDecoding)(b) }
func BenchmarkBSONFullDocumentEncoding(b *testing.B)     { WrapCase(BSONFullDocumentEncoding)(b) }
func BenchmarkBSONFullDocumentDecodingLazy(b *testing.B) { WrapCase(BSONFullDocumentDecodingLazy)(b) }
func BenchmarkBSONFullDocumentDecoding(b *testing.B)     { WrapCase(BSONFullDocumentDecoding)(b) }

func BenchmarkBSONFlatIteratorDecoding(b *testing.B) { WrapCase(BSONFlatIteratorDecoding)(b) }
func BenchmarkBSONDeepIteratorDecoding(b *testing.B) { WrapCase(BSONDeepIteratorDecoding)(b) }
func BenchmarkBSONFullIteratorDecoding(b *testing.B) { WrapCase(BSONFullIteratorDecoding)(b) }

func BenchmarkBSONFlatMapDecoding(b *testing.B) { WrapCase(BSONFlatMapDecoding)(b) }
func BenchmarkBSONFlatMapEncoding(b *testing.B) { WrapCase(BSONFlatMapEncoding)(b) }
func BenchmarkBSONDeepMapDecoding(b *testing.B) { WrapCase(BSONDeepMapDecoding)(b) }
func BenchmarkBSONDeepMapEncoding(b *testing.B) { WrapCase(BSONDeepMapEncoding)(b) }
func BenchmarkBSONFullMapDecoding(b *testing.B) { WrapCase(BSONFullMapDecoding)(b) }
func BenchmarkBSONFullMapEncoding(b *testing.B) { WrapCase(BSONFullMapEncoding)(b) }

func BenchmarkBSONRecordEncoding(b *testing.B) { WrapCase(BSONRecordEncoding)(b) }
func BenchmarkBSONRecordDecoding(b *testing.B) { WrapCase(BSONRecordDecoding)(b) }

func BenchmarkBSONFlatExtJSONEncoding(b *testing.B) { WrapCase(BSONFlatExtJSONEncoding)(b) }
func BenchmarkBSONFlatExtJSONDecoding(b *testing.B) { WrapCase(BSONFlatExtJSONDecoding)(b) }
func BenchmarkBSONDeepExtJSONEncoding(b *testing.B) { WrapCase(BSONDeepExtJSONEncoding)(b) }
func BenchmarkBSONDeepExtJSONDecoding(b *testing.B) { WrapCase(BSONDeepExtJSONDecoding)(b) }
