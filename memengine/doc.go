// Package memengine is an in-process columnar engine that accepts chunks
// from a duckvec.Appender, keeps them as compressed column blocks and
// scans them back through duckvec.ChunkReader.
//
// It implements duckvec.Destination and duckvec.EngineInfo and hosts a
// registry of scalar functions, which makes it the engine used by the
// package tests, the samples and the duckvec command.
//
//	e := memengine.New(memengine.WithCompression(memengine.CompressionZSTD))
//	tbl, _ := e.CreateTable("t", memengine.Column{Name: "id", Type: "INTEGER"})
//	app, _ := duckvec.NewAppender(tbl.Destination())
package memengine
