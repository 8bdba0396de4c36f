package api

// Fragments shared by every document; field names follow the server schema.
const (
	userFragment = `
fragment UserDetails on User {
  id
  username
  email
  createdAt
}`

	messageFragment = `
fragment MessageDetails on Message {
  id
  content
  senderId
  receiverId
  createdAt
  sender {
    ...UserDetails
  }
  receiver {
    ...UserDetails
  }
}` + userFragment
)

const (
	CurrentUserQuery = `
query GetCurrentUser {
  currentUser {
    ...UserDetails
  }
}` + userFragment

	UsersQuery = `
query GetUsers {
  users {
    ...UserDetails
  }
}` + userFragment

	MessagesQuery = `
query GetMessages($userId: ID!) {
  messages(userId: $userId) {
    ...MessageDetails
  }
}` + messageFragment

	MessagesPageQuery = `
query GetMessagesPaginated($userId: ID!, $limit: Int!, $offset: Int!) {
  messages(userId: $userId, limit: $limit, offset: $offset) {
    messages {
      ...MessageDetails
    }
    hasMore
    totalCount
  }
}` + messageFragment

	// The user fragment already travels with the message fragment.
	ConversationsQuery = `
query GetConversations {
  conversations {
    id
    lastMessage {
      ...MessageDetails
    }
    participant {
      ...UserDetails
    }
    unreadCount
  }
}` + messageFragment
)

const (
	LoginMutation = `
mutation Login($input: LoginInput!) {
  login(input: $input) {
    token
    user {
      ...UserDetails
    }
  }
}` + userFragment

	SignupMutation = `
mutation Signup($input: SignupInput!) {
  signup(input: $input) {
    token
    user {
      ...UserDetails
    }
  }
}` + userFragment

	SendMessageMutation = `
mutation SendMessage($input: SendMessageInput!) {
  sendMessage(input: $input) {
    ...MessageDetails
  }
}` + messageFragment
)

const (
	MessageReceivedSubscription = `
subscription OnMessageReceived {
  messageReceived {
    ...MessageDetails
  }
}` + messageFragment

	UserMessageReceivedSubscription = `
subscription OnUserMessageReceived($userId: ID!) {
  messageReceived(userId: $userId) {
    ...MessageDetails
  }
}` + messageFragment

	UserTypingSubscription = `
subscription OnUserTyping($userId: ID!) {
  userTyping(userId: $userId) {
    userId
    isTyping
  }
}`

	UserStatusSubscription = `
subscription OnUserStatusChanged {
  userStatusChanged {
    userId
    isOnline
    lastSeen
  }
}`
)
