// Package producer implements push delivery of pixel data from producers
// to consumers.
//
// An [ImageProducer] calls every registered [ImageConsumer] synchronously
// with the image dimensions, properties, color model, delivery hints and
// pixels, then signals completion. [MemoryImageSource] produces from an
// in-memory pixel array, optionally animated. [PixelCollector] pulls a
// producer's image into an ARGB slice:
//
//	src, err := producer.NewIntMemoryImageSource(w, h, nil, pix, 0, w, nil)
//	if err != nil {
//	    return err
//	}
//	argb, err := producer.NewPixelCollector(src).Collect()
package producer
