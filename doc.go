// Package imgkit renders HTML, local files and URLs to images with
// wkhtmltoimage.
//
// # Quick Start
//
// Create a converter, render a source, and close when done:
//
//	conv, err := imgkit.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	img, err := conv.Render(ctx, imgkit.Input{
//	    Source: imgkit.NewSource("<h1>Hello</h1>"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hello.jpg", img, 0644)
//
// NewSource classifies its argument: http(s) URLs are handed to the
// renderer as they are, an *os.File or a FileSource is rendered from disk,
// and anything else is HTML piped on stdin. RenderFile lets the renderer
// write the image itself and takes the format from the file extension:
//
//	err := conv.RenderFile(ctx, imgkit.Input{
//	    Source: imgkit.NewSource("https://example.com"),
//	}, "example.png")
//
// # Options
//
// Every wkhtmltoimage flag is available through RenderOptions. Keys are
// normalized (crop_h becomes --crop-h), true emits a bare switch, false and
// nil drop the flag, and slices expand into repeated values:
//
//	opts := imgkit.NewRenderOptions(
//	    "width", 1280,
//	    "quality", 90,
//	    "custom_header", []string{"User-Agent", "imgkit"},
//	    "disable_javascript", true,
//	)
//
// Options are layered: converter defaults (DefaultOptions, a height of
// 1000), then Input.Options, then options embedded in the page as
// <meta name="imgkit-width" content="1280"> tags. Input.Format and the
// RenderFile extension always decide the format.
//
// # Stylesheets and Scripts
//
// HTML sources accept attachments. Stylesheets are inlined in <style>
// tags and scripts are referenced or inlined before </head>:
//
//	img, err := conv.Render(ctx, imgkit.Input{
//	    Source:      imgkit.NewSource(html),
//	    Stylesheets: []imgkit.Attachment{imgkit.FileAttachment("print.css")},
//	    Scripts:     []imgkit.Attachment{imgkit.InlineAttachment("document.body.className='shot'")},
//	})
//
// Attachments on URL or file sources fail with ErrImproperSource.
//
// # Markdown
//
// MarkdownSource converts Markdown (GFM with highlighted code blocks) to
// an HTML source ready to render.
//
// # Parallel Processing
//
// For batch rendering, use ConverterPool to bound concurrent renders:
//
//	pool := imgkit.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//
// # Renderer Requirements
//
// The default backend runs wkhtmltoimage, found through
// $IMGKIT_WKHTMLTOIMAGE, then PATH. WithBackend(BackendChrome) captures
// screenshots in headless Chrome instead; go-rod downloads a managed
// Chromium on first use. For containers and CI environments, set
// ROD_NO_SANDBOX=1 to disable the Chrome sandbox.
package imgkit
