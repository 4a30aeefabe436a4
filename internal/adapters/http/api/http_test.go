package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/workbook/internal/adapters/http/api"
	service "github.com/okian/workbook/internal/app"
	"github.com/okian/workbook/internal/domain/catalog"
	"github.com/okian/workbook/internal/domain/scoring"
	"github.com/okian/workbook/internal/domain/types"
	"github.com/okian/workbook/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

type fixture struct {
	svc *service.Service
	srv *httptest.Server
}

func newFixture(opts ...api.Option) *fixture {
	svc := service.New()
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, svc, opts...).Register(context.Background(), mux)
	return &fixture{svc: svc, srv: httptest.NewServer(mux)}
}

func (f *fixture) Close() {
	f.srv.Close()
	f.svc.Stop()
}

func (f *fixture) do(method, path, body string) *http.Response {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	if err != nil {
		panic(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		panic(err)
	}
	return resp
}

func decodeBody(resp *http.Response, v any) {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		panic(err)
	}
}

func (f *fixture) createSession() types.SessionView {
	resp := f.do(http.MethodPost, "/sessions", `{"activity_id":"trace"}`)
	var v types.SessionView
	decodeBody(resp, &v)
	return v
}

// guideEvents encodes the guide as one stroke seen on a surface at (left, top).
func guideEvents(batchID string, left, top float64) string {
	act, _ := catalog.Default().Get("trace")
	var evs []string
	for i, p := range act.Tracing.Curve().Polyline(scoring.DefaultSamples) {
		typ := "pointermove"
		if i == 0 {
			typ = "pointerdown"
		}
		evs = append(evs, fmt.Sprintf(`{"type":%q,"x":%g,"y":%g}`, typ, p.X+left, p.Y+top))
	}
	evs = append(evs, `{"type":"pointerup"}`)
	return fmt.Sprintf(`{"batch_id":%q,"surface":{"left":%g,"top":%g},"events":[%s]}`,
		batchID, left, top, strings.Join(evs, ","))
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestServer_Catalog(t *testing.T) {
	Convey("Given a running API", t, func() {
		f := newFixture()
		defer f.Close()

		Convey("When listing activities", func() {
			resp := f.do(http.MethodGet, "/activities", "")
			var body struct {
				Activities []catalog.Activity `json:"activities"`
			}
			decodeBody(resp, &body)

			Convey("Then the workbook pages are returned in order", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(len(body.Activities), ShouldEqual, 6)
				So(body.Activities[1].ID, ShouldEqual, "trace")
				So(body.Activities[1].Tracing.Path, ShouldEqual, catalog.GuidePath)
			})
		})

		Convey("When paging past the last activity", func() {
			resp := f.do(http.MethodGet, "/activities?page=99", "")
			var body struct {
				Index    int              `json:"index"`
				Total    int              `json:"total"`
				Activity catalog.Activity `json:"activity"`
			}
			decodeBody(resp, &body)

			Convey("Then the last page is returned with its index", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(body.Index, ShouldEqual, 5)
				So(body.Total, ShouldEqual, 6)
				So(body.Activity.ID, ShouldEqual, "sizes")
			})
		})

		Convey("When paging before the first activity", func() {
			resp := f.do(http.MethodGet, "/activities?page=-2", "")
			var body struct {
				Index    int              `json:"index"`
				Activity catalog.Activity `json:"activity"`
			}
			decodeBody(resp, &body)
			So(body.Index, ShouldEqual, 0)
			So(body.Activity.Kind, ShouldEqual, catalog.KindCover)
		})

		Convey("When the page is not a number", func() {
			resp := f.do(http.MethodGet, "/activities?page=next", "")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching an unknown activity", func() {
			resp := f.do(http.MethodGet, "/activities/nope", "")
			var e apiError
			decodeBody(resp, &e)

			Convey("Then it is not found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(e.Code, ShouldEqual, "not_found")
				So(e.Message, ShouldContainSubstring, "api.get_activity")
			})
		})

		Convey("When checking a matching page", func() {
			resp := f.do(http.MethodPost, "/activities/match-food/check",
				`{"moves":[{"item_id":"dog","target_id":"dog"},{"item_id":"cat","target_id":"duck"}]}`)
			var out struct {
				Answers  map[string]bool `json:"answers"`
				Correct  int             `json:"correct"`
				Total    int             `json:"total"`
				Complete bool            `json:"complete"`
			}
			decodeBody(resp, &out)

			Convey("Then answers are graded", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(out.Correct, ShouldEqual, 1)
				So(out.Total, ShouldEqual, 3)
				So(out.Answers["duck"], ShouldBeFalse)
				So(out.Complete, ShouldBeFalse)
			})
		})

		Convey("When a sizes round is drawn and answered", func() {
			resp := f.do(http.MethodGet, "/activities/sizes/round", "")
			var round struct {
				Big   string `json:"big"`
				Small string `json:"small"`
			}
			decodeBody(resp, &round)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(round.Big, ShouldNotBeEmpty)
			So(round.Small, ShouldNotBeEmpty)

			resp = f.do(http.MethodPost, "/activities/sizes/answer",
				`{"big":"`+round.Big+`","small":"`+round.Small+`","choice":"kecil"}`)
			var ans struct {
				Animal string `json:"animal"`
				Label  string `json:"label"`
			}
			decodeBody(resp, &ans)

			Convey("Then kecil names the small animal", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(ans.Animal, ShouldEqual, round.Small)
				So(ans.Label, ShouldEqual, "KECIL")
			})
		})

		Convey("When a sizes answer has an unknown choice", func() {
			resp := f.do(http.MethodPost, "/activities/sizes/answer", `{"big":"🐘","small":"🐭","choice":"tengah"}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a round is asked of a tracing page", func() {
			resp := f.do(http.MethodGet, "/activities/trace/round", "")
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When checking a tracing page as a matching page", func() {
			resp := f.do(http.MethodPost, "/activities/trace/check", `{"moves":[]}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the health endpoint is scraped", func() {
			resp := f.do(http.MethodGet, "/healthz", "")
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			Convey("Then it serves metrics", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(b), ShouldContainSubstring, "workbook_tracing_")
			})
		})

		Convey("When stats are requested", func() {
			resp := f.do(http.MethodGet, "/stats", "")
			var stats map[string]any
			decodeBody(resp, &stats)
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(stats["started"], ShouldEqual, true)
		})
	})
}

func TestServer_Score(t *testing.T) {
	Convey("Given a running API", t, func() {
		f := newFixture(api.WithMaxEvents(500))
		defer f.Close()
		act, _ := catalog.Default().Get("trace")
		pts, _ := json.Marshal(act.Tracing.Curve().Polyline(scoring.DefaultSamples))

		Convey("When the guide samples are posted", func() {
			resp := f.do(http.MethodPost, "/score", fmt.Sprintf(`{"points":%s}`, pts))
			var res scoring.Result
			decodeBody(resp, &res)

			Convey("Then full marks are awarded", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(res, ShouldResemble, scoring.Result{Percent: 100, Stars: 3})
			})
		})

		Convey("When no points are posted", func() {
			resp := f.do(http.MethodPost, "/score", `{"activity_id":"trace","points":[]}`)
			var res scoring.Result
			decodeBody(resp, &res)
			So(res, ShouldResemble, scoring.Result{})
		})

		Convey("When invalid parameters are posted", func() {
			resp := f.do(http.MethodPost, "/score", `{"points":[],"samples":1}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the body is malformed", func() {
			resp := f.do(http.MethodPost, "/score", `{"points":`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When unknown fields are posted", func() {
			resp := f.do(http.MethodPost, "/score", `{"pts":[]}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When too many points are posted", func() {
			var b strings.Builder
			b.WriteString(`{"points":[`)
			for i := range 501 {
				if i > 0 {
					b.WriteString(",")
				}
				b.WriteString(`{"x":1,"y":1}`)
			}
			b.WriteString(`]}`)
			resp := f.do(http.MethodPost, "/score", b.String())
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When more samples are asked for than allowed", func() {
			resp := f.do(http.MethodPost, "/score", `{"points":[{"x":-5000,"y":-5000}],"samples":3000000}`)
			var e apiError
			decodeBody(resp, &e)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(e.Code, ShouldEqual, "bad_request")
			So(e.Message, ShouldContainSubstring, "samples")
		})
	})

	Convey("Given a server with a low samples cap", t, func() {
		f := newFixture(api.WithMaxSamples(50))
		defer f.Close()

		resp := f.do(http.MethodPost, "/score", `{"points":[],"samples":51}`)
		resp.Body.Close()
		So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

		resp = f.do(http.MethodPost, "/score", `{"points":[],"samples":50}`)
		resp.Body.Close()
		So(resp.StatusCode, ShouldEqual, http.StatusOK)
	})

	Convey("Given a tight body limit", t, func() {
		f := newFixture(api.WithMaxBodyBytes(16))
		defer f.Close()

		resp := f.do(http.MethodPost, "/score", `{"points":[{"x":1,"y":2},{"x":3,"y":4}]}`)
		var e apiError
		decodeBody(resp, &e)
		So(resp.StatusCode, ShouldEqual, http.StatusRequestEntityTooLarge)
		So(e.Code, ShouldEqual, "too_large")
	})
}

func TestServer_Sessions(t *testing.T) {
	Convey("Given a running API", t, func() {
		f := newFixture()
		defer f.Close()

		Convey("When a session is created", func() {
			resp := f.do(http.MethodPost, "/sessions", `{"activity_id":"trace"}`)
			var v types.SessionView
			decodeBody(resp, &v)

			Convey("Then it starts idle and empty", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusCreated)
				So(resp.Header.Get("Location"), ShouldEqual, "/sessions/"+v.ID)
				So(v.State, ShouldEqual, "idle")
				So(v.Points, ShouldEqual, 0)
				So(v.ActivityID, ShouldEqual, "trace")
			})
		})

		Convey("When a session is created without a body", func() {
			resp := f.do(http.MethodPost, "/sessions", "")
			var v types.SessionView
			decodeBody(resp, &v)
			So(resp.StatusCode, ShouldEqual, http.StatusCreated)
			So(v.ActivityID, ShouldEqual, "trace")
		})

		Convey("When a session is created on a non-tracing page", func() {
			resp := f.do(http.MethodPost, "/sessions", `{"activity_id":"cover"}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the guide is traced through the events endpoint", func() {
			v := f.createSession()
			resp := f.do(http.MethodPost, "/sessions/"+v.ID+"/events", guideEvents("b-1", 200, 150))
			var res types.ApplyResult
			decodeBody(resp, &res)

			Convey("Then every event is applied", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(res.Applied, ShouldEqual, scoring.DefaultSamples+1)
				So(res.Points, ShouldEqual, scoring.DefaultSamples)
				So(res.State, ShouldEqual, "idle")
			})

			Convey("And a retried batch is reported as duplicate", func() {
				resp := f.do(http.MethodPost, "/sessions/"+v.ID+"/events", guideEvents("b-1", 200, 150))
				var dup types.ApplyResult
				decodeBody(resp, &dup)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(dup.Duplicate, ShouldBeTrue)
				So(dup.Points, ShouldEqual, scoring.DefaultSamples)
			})

			Convey("And checking awards three stars", func() {
				resp := f.do(http.MethodPost, "/sessions/"+v.ID+"/check", "")
				var r scoring.Result
				decodeBody(resp, &r)
				So(r, ShouldResemble, scoring.Result{Percent: 100, Stars: 3})

				resp = f.do(http.MethodGet, "/sessions/"+v.ID, "")
				var got types.SessionView
				decodeBody(resp, &got)
				So(got.Result, ShouldNotBeNil)
				So(got.Result.Stars, ShouldEqual, 3)
			})

			Convey("And the snapshot is a PNG", func() {
				resp := f.do(http.MethodGet, "/sessions/"+v.ID+"/snapshot.png", "")
				b, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldEqual, "image/png")
				So(bytes.HasPrefix(b, []byte("\x89PNG")), ShouldBeTrue)
			})

			Convey("And reset clears it", func() {
				resp := f.do(http.MethodPost, "/sessions/"+v.ID+"/reset", "")
				var got types.SessionView
				decodeBody(resp, &got)
				So(got.Points, ShouldEqual, 0)
				So(got.Result, ShouldBeNil)
			})

			Convey("And delete removes it", func() {
				resp := f.do(http.MethodDelete, "/sessions/"+v.ID, "")
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusNoContent)

				resp = f.do(http.MethodGet, "/sessions/"+v.ID, "")
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When an event has an unknown type", func() {
			v := f.createSession()
			resp := f.do(http.MethodPost, "/sessions/"+v.ID+"/events", `{"events":[{"type":"wiggle","x":1,"y":1}]}`)
			var e apiError
			decodeBody(resp, &e)
			So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			So(e.Message, ShouldContainSubstring, "event 0")
		})

		Convey("When events are posted to a missing session", func() {
			resp := f.do(http.MethodPost, "/sessions/missing/events", `{"events":[]}`)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

type streamEvent struct {
	Type    string `json:"type"`
	State   string `json:"state"`
	Points  int    `json:"points"`
	Percent *int   `json:"percent"`
	Stars   *int   `json:"stars"`
	Code    string `json:"code"`
}

func readEvent(conn *websocket.Conn) streamEvent {
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev streamEvent
	if err := conn.ReadJSON(&ev); err != nil {
		panic(err)
	}
	return ev
}

func TestServer_Stream(t *testing.T) {
	Convey("Given a session and a stream connection", t, func() {
		f := newFixture()
		defer f.Close()
		v := f.createSession()

		wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/sessions/" + v.ID + "/stream"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		send := func(msg string) {
			So(conn.WriteMessage(websocket.TextMessage, []byte(msg)), ShouldBeNil)
		}

		Convey("When a stroke is drawn at the start of the guide", func() {
			send(`{"type":"press","x":50,"y":80,"surface":{"left":10,"top":20}}`)
			pressed := readEvent(conn)
			send(`{"type":"move","x":60,"y":80,"surface":{"left":10,"top":20}}`)
			send(`{"type":"release"}`)
			released := readEvent(conn)

			Convey("Then state changes are acknowledged and moves are silent", func() {
				So(pressed.Type, ShouldEqual, "state")
				So(pressed.State, ShouldEqual, "drawing")
				So(pressed.Points, ShouldEqual, 1)
				So(released.State, ShouldEqual, "idle")
				So(released.Points, ShouldEqual, 2)
			})

			Convey("And checking over the stream returns a low score", func() {
				send(`{"type":"check"}`)
				ev := readEvent(conn)
				So(ev.Type, ShouldEqual, "result")
				So(*ev.Percent, ShouldBeGreaterThan, 0)
				So(*ev.Percent, ShouldBeLessThan, 25)
				So(*ev.Stars, ShouldEqual, 0)
			})

			Convey("And a REST check is pushed to the stream", func() {
				resp := f.do(http.MethodPost, "/sessions/"+v.ID+"/check", "")
				resp.Body.Close()
				ev := readEvent(conn)
				So(ev.Type, ShouldEqual, "result")
			})

			Convey("And reset over the stream empties the drawing", func() {
				send(`{"type":"reset"}`)
				ev := readEvent(conn)
				So(ev.Type, ShouldEqual, "reset")
				So(ev.Points, ShouldEqual, 0)
			})
		})

		Convey("When a press arrives without a surface", func() {
			send(`{"type":"press","x":50,"y":80}`)
			ev := readEvent(conn)

			Convey("Then it is reported as skipped", func() {
				So(ev.Type, ShouldEqual, "skipped")
				So(ev.State, ShouldEqual, "idle")
				So(ev.Points, ShouldEqual, 0)
			})
		})

		Convey("When garbage is sent", func() {
			send(`{"type":"dance"}`)
			ev := readEvent(conn)
			So(ev.Type, ShouldEqual, "error")
			So(ev.Code, ShouldEqual, "bad_request")
		})
	})

	Convey("Given a missing session", t, func() {
		f := newFixture()
		defer f.Close()

		wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/sessions/missing/stream"
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)

		Convey("Then the upgrade is refused with 404", func() {
			So(err, ShouldNotBeNil)
			So(resp, ShouldNotBeNil)
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a plain HTTP request to the stream", t, func() {
		f := newFixture()
		defer f.Close()
		v := f.createSession()

		resp := f.do(http.MethodGet, "/sessions/"+v.ID+"/stream", "")
		resp.Body.Close()
		So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
	})
}
