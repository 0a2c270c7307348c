package app

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mingle/internal/common"
	"mingle/internal/db"
	"mingle/internal/post"
	"mingle/internal/user"
)

type App struct {
	db          *sql.DB
	router      *http.ServeMux
	userService *user.Service
	postService *post.Service
}

func (a *App) Run(port int, driver, dsn string) error {
	if err := a.bootstrap(driver, dsn); err != nil {
		return err
	}
	common.InfoLogger.Println("Starting the application at port:", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), corsMW(a.router))
}

func (a *App) bootstrap(driver, dsn string) error {
	d, err := db.Open(driver, dsn)
	if err != nil {
		return err
	}
	a.db = d
	common.InfoLogger.Println("Connect to db successfully")

	if err := db.Migrate(a.db); err != nil {
		return err
	}

	a.userService = user.NewService(a.db)
	a.postService = post.NewService(a.db)

	a.router = http.NewServeMux()

	//auth endpoints
	a.router.HandleFunc("POST /api/auth/register", a.register)
	a.router.HandleFunc("POST /api/auth/login", a.logIn)
	a.router.Handle("POST /api/auth/logout", a.userIdentity(a.logOut))

	//post endpoints
	a.router.Handle("POST /api/posts", a.userIdentity(a.addPost))
	a.router.Handle("GET /api/posts", a.userIdentity(a.browseByTopic))
	a.router.Handle("POST /api/posts/{id}/like", a.userIdentity(a.likePost))
	a.router.Handle("POST /api/posts/{id}/dislike", a.userIdentity(a.dislikePost))
	a.router.Handle("POST /api/posts/{id}/comments", a.userIdentity(a.addComment))

	//topic endpoints
	a.router.Handle("GET /api/topics/{topic}/most-active", a.userIdentity(a.mostActive))
	a.router.Handle("GET /api/topics/{topic}/expired", a.userIdentity(a.expiredByTopic))

	return nil
}

func setHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
}

//Auth handlers

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	var u user.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		handleError(w, common.InvalidArgumentError(err, "invalid json"))
		return
	}

	regU, err := a.userService.Register(u)
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(regU); err != nil {
		common.ErrorLogger.Println(err)
	}
}

func (a *App) logIn(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	var loginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		handleError(w, common.InvalidArgumentError(err, "invalid json"))
		return
	}

	token, err := a.userService.NewSession(loginReq.Email, loginReq.Password)
	if err != nil {
		handleError(w, err)
		return
	}
	common.InfoLogger.Printf("%s logged in", loginReq.Email)

	resp := map[string]string{"token": token}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		common.ErrorLogger.Println(err)
	}
}

func (a *App) logOut(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	u, _ := r.Context().Value(userKey).(userContext)

	if err := a.userService.LogOut(u.userID); err != nil {
		handleError(w, err)
		return
	}
	common.InfoLogger.Printf("User %s logged out", u.name)
	w.WriteHeader(http.StatusNoContent)
}

//Post handlers

func (a *App) addPost(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	var p post.Post
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		handleError(w, common.InvalidArgumentError(err, "invalid json"))
		return
	}

	u, _ := r.Context().Value(userKey).(userContext)
	p.UserId = u.userID

	newPost, err := a.postService.NewPost(p)
	if err != nil {
		handleError(w, err)
		return
	}

	common.InfoLogger.Println("New post added")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(newPost); err != nil {
		common.ErrorLogger.Println(err)
	}
}

func (a *App) browseByTopic(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	topic := r.URL.Query().Get("topic")
	if topic == "" {
		handleError(w, common.InvalidArgumentError(nil, "topic is missing"))
		return
	}

	posts, err := a.postService.FindByTopic(topic)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(posts); err != nil {
		common.ErrorLogger.Println(err)
	}
}

func (a *App) likePost(w http.ResponseWriter, r *http.Request) {
	a.addMark(w, r, true)
}

func (a *App) dislikePost(w http.ResponseWriter, r *http.Request) {
	a.addMark(w, r, false)
}

func (a *App) addMark(w http.ResponseWriter, r *http.Request, mark bool) {
	setHeaders(w)

	u, _ := r.Context().Value(userKey).(userContext)
	m := post.Mark{
		PostId: r.PathValue("id"),
		UserId: u.userID,
		Mark:   mark,
	}

	counters, err := a.postService.AddMark(m)
	if err != nil {
		handleError(w, err)
		return
	}

	common.InfoLogger.Println("Mark added")
	if err := json.NewEncoder(w).Encode(counters); err != nil {
		common.ErrorLogger.Println(err)
	}
}

func (a *App) addComment(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	var c post.Comment
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		handleError(w, common.InvalidArgumentError(err, "invalid json"))
		return
	}

	u, _ := r.Context().Value(userKey).(userContext)
	c.PostId = r.PathValue("id")
	c.UserId = u.userID
	c.Author = u.name

	comment, err := a.postService.AddComment(c)
	if err != nil {
		handleError(w, err)
		return
	}

	common.InfoLogger.Println("Comment added")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(comment); err != nil {
		common.ErrorLogger.Println(err)
	}
}

//Topic handlers

func (a *App) mostActive(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	p, err := a.postService.MostActive(r.PathValue("topic"), time.Now())
	if err != nil {
		handleError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(p); err != nil {
		common.ErrorLogger.Println(err)
	}
}

func (a *App) expiredByTopic(w http.ResponseWriter, r *http.Request) {
	setHeaders(w)

	posts, err := a.postService.ExpiredByTopic(r.PathValue("topic"), time.Now())
	if err != nil {
		handleError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(posts); err != nil {
		common.ErrorLogger.Println(err)
	}
}

//Error handler

func handleError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		common.InfoLogger.Println(appErr.Message, ":", appErr.Err)
		w.WriteHeader(appErr.StatusCode)
		w.Write(appErr.Marshal())
		return
	}

	common.ErrorLogger.Println("Unhandled error occurred: ", err)
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(common.SystemError(err).Marshal())
}
